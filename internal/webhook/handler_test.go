package webhook

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srtm-gateway/internal/platform/metrics"
)

func newTestRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := chi.NewRouter()
	NewHandler(logger, metrics.New()).Register(r)
	return r
}

func callbackXML(msgType, wrapper, tipoRespuesta string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<MensajeBDA>
	<Cabecera>
		<TipoMsg>%s</TipoMsg>
	</Cabecera>
	<Detalle>
		<%s>
			<TipoRespuesta>%s</TipoRespuesta>
			<CodigoError></CodigoError>
		</%s>
	</Detalle>
</MensajeBDA>`, msgType, wrapper, tipoRespuesta, wrapper)
}

func post(t *testing.T, router http.Handler, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/srtm_response", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAcceptedCallbackGetsAck(t *testing.T) {
	router := newTestRouter()
	rec := post(t, router, "text/xml",
		callbackXML("1002", "RespuestaRegistroPositivo", "1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(),
		"<ser:receiveMessageReturn>ack</ser:receiveMessageReturn>")
}

func TestRejectedCallbackStillAcked(t *testing.T) {
	// A rejection is a valid registry answer; the transport ack is the same.
	router := newTestRouter()
	rec := post(t, router, "text/xml",
		callbackXML("3002", "RespuestaCancelacionRegistroNegativo", "0"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "receiveMessageReturn>ack<")
}

func TestAllKnownMessageTypes(t *testing.T) {
	router := newTestRouter()
	for msgType, wrapper := range responseWrappers {
		rec := post(t, router, "application/xml", callbackXML(msgType, wrapper, "1"))
		assert.Equal(t, http.StatusOK, rec.Code, "msg type %s", msgType)
		assert.Contains(t, rec.Body.String(), "ack", "msg type %s", msgType)
	}
}

func TestContentTypeWithCharsetAccepted(t *testing.T) {
	router := newTestRouter()
	rec := post(t, router, "text/xml; charset=utf-8",
		callbackXML("2002", "RespuestaRegistroNegativo", "1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ack")
}

func TestWrongContentType(t *testing.T) {
	router := newTestRouter()
	for _, ct := range []string{"application/json", "text/plain", ""} {
		rec := post(t, router, ct,
			callbackXML("1002", "RespuestaRegistroPositivo", "1"))
		assert.Equal(t, http.StatusNotFound, rec.Code, "content type %q", ct)
		assert.Empty(t, rec.Body.String(), "content type %q", ct)
	}
}

func TestMalformedBody(t *testing.T) {
	router := newTestRouter()
	for _, body := range []string{"not xml at all", "<Abierto><SinCerrar>"} {
		rec := post(t, router, "text/xml", body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "body %q", body)
		assert.Empty(t, rec.Body.String(), "body %q", body)
	}
}

func TestMessageWithoutTipoMsgIgnored(t *testing.T) {
	router := newTestRouter()
	rec := post(t, router, "text/xml", `<MensajeBDA><Cabecera></Cabecera></MensajeBDA>`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestUnknownMessageTypeIgnored(t *testing.T) {
	router := newTestRouter()
	rec := post(t, router, "text/xml",
		callbackXML("9999", "RespuestaRegistroPositivo", "1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestMissingTipoRespuesta(t *testing.T) {
	router := newTestRouter()
	rec := post(t, router, "text/xml", `<?xml version="1.0"?>
<MensajeBDA>
	<Cabecera><TipoMsg>1002</TipoMsg></Cabecera>
	<Detalle><OtroElemento/></Detalle>
</MensajeBDA>`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestGetNotAllowed(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/srtm_response", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
