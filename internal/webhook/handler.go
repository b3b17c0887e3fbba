// Package webhook receives the asynchronous SRTM callbacks that report the
// final disposition of previously submitted action messages. The registry
// only needs a transport-level acknowledgement; the disposition itself is
// logged and counted, never acted on.
package webhook

import (
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/beevik/etree"
	"github.com/go-chi/chi/v5"

	"srtm-gateway/internal/platform/metrics"
)

const maxBodyBytes = 4 << 20

// responseWrappers maps each callback message type to the element that holds
// its TipoRespuesta. These codes are fixed by the registry protocol.
var responseWrappers = map[string]string{
	"1002": "RespuestaRegistroPositivo",
	"2002": "RespuestaRegistroNegativo",
	"3002": "RespuestaCancelacionRegistroNegativo",
	"4002": "RespuestaModificacionRegistroPositivo",
	"5002": "RespuestaCancelacionRegistroPositivo",
}

// ackResponse is the SOAP acknowledgement the registry expects verbatim.
const ackResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <soapenv:Body>
    <ser:receiveMessageResponse xmlns:ser="http://service.client.xcewsmulti.iecisa.es">
      <ser:receiveMessageReturn>ack</ser:receiveMessageReturn>
    </ser:receiveMessageResponse>
  </soapenv:Body>
</soapenv:Envelope>
`

// Handler serves the single callback endpoint. Error responses carry an empty
// body on purpose: the registry retries on anything that is not an ack, and a
// body would only leak internals to the sender.
type Handler struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, metrics: m}
}

// Register wires the callback route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/srtm_response", h.handle)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "callback recibido")

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || (mediaType != "text/xml" && mediaType != "application/xml") {
		h.logger.WarnContext(ctx, "content-type invalido", "content_type", r.Header.Get("Content-Type"))
		h.metrics.ObserveWebhook("none", "invalid_content_type")
		w.WriteHeader(http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.ErrorContext(ctx, "no se pudo leer el cuerpo", "error", err)
		h.metrics.ObserveWebhook("none", "read_error")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil || doc.Root() == nil {
		h.logger.ErrorContext(ctx, "xml invalido", "error", err)
		h.metrics.ObserveWebhook("none", "parse_error")
		w.WriteHeader(http.StatusNotFound)
		return
	}

	tipoMsg := doc.FindElement("//*[local-name()='TipoMsg']")
	if tipoMsg == nil {
		h.logger.WarnContext(ctx, "mensaje sin TipoMsg, ignorado")
		h.metrics.ObserveWebhook("none", "ignored")
		w.WriteHeader(http.StatusOK)
		return
	}
	msgType := tipoMsg.Text()
	wrapper, ok := responseWrappers[msgType]
	if !ok {
		h.logger.WarnContext(ctx, "tipo de mensaje no soportado, ignorado", "tipo_msg", msgType)
		h.metrics.ObserveWebhook(msgType, "ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	tipoRespuesta := doc.FindElement(
		"//*[local-name()='" + wrapper + "']/*[local-name()='TipoRespuesta']")
	if tipoRespuesta == nil {
		h.logger.ErrorContext(ctx, "no se encontro TipoRespuesta", "tipo_msg", msgType)
		h.metrics.ObserveWebhook(msgType, "missing_respuesta")
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if tipoRespuesta.Text() == "1" {
		h.logger.InfoContext(ctx, "respuesta aceptada", "tipo_msg", msgType)
	} else {
		h.logger.WarnContext(ctx, "respuesta rechazada",
			"tipo_msg", msgType, "tipo_respuesta", tipoRespuesta.Text())
	}
	h.metrics.ObserveWebhook(msgType, "acknowledged")

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(ackResponse)); err != nil {
		h.logger.ErrorContext(ctx, "no se pudo escribir el ack", "error", err)
	}
}
