package envelope

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srtm-gateway/internal/registry/models"
)

var testCategories = map[string]string{
	"1001": "01",
	"2001": "02",
	"3001": "03",
	"4001": "04",
	"5001": "05",
}

func fixedBuilder(seq *Sequence) *Builder {
	at := time.Date(2024, 10, 25, 14, 30, 0, 0, time.UTC)
	return NewBuilder(seq, testCategories).WithClock(func() time.Time { return at })
}

func TestSequenceSeedsFromStart(t *testing.T) {
	start := time.Unix(1729866600, 0)
	seq := NewSequence(start)
	want := start.Unix()%100000 + 1
	assert.Equal(t, want, seq.NextMessage())
	assert.Equal(t, want, seq.NextProcess())
	assert.Equal(t, want+1, seq.NextMessage())
}

func TestSequenceConcurrentIncrements(t *testing.T) {
	seq := NewSequence(time.Unix(0, 0))
	const goroutines = 50
	const perGoroutine = 20

	var wg sync.WaitGroup
	seen := make(chan int64, goroutines*perGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				seen <- seq.NextMessage()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]bool)
	for v := range seen {
		assert.False(t, unique[v], "duplicate sequence value %d", v)
		unique[v] = true
	}
	assert.Len(t, unique, goroutines*perGoroutine)
}

func TestIdentifierFormats(t *testing.T) {
	seq := NewSequence(time.Unix(0, 0))
	b := fixedBuilder(seq)

	msgID := b.MessageID()
	assert.Len(t, msgID, len(OperatorID)+8+7)
	assert.True(t, strings.HasPrefix(msgID, OperatorID+"20241025"), msgID)
	assert.True(t, strings.HasSuffix(msgID, "0000001"), msgID)

	procID := b.ProcessID("2001")
	assert.Equal(t, "00020"+"20241025"+"02"+"00001", procID)

	unknown := b.ProcessID("9999")
	assert.Contains(t, unknown, "20241025"+"00", "unknown types fall back to category 00")
}

func TestEscapeXML(t *testing.T) {
	assert.Equal(t, "a &amp; b &lt;c&gt; &quot;d&quot; &apos;e&apos;",
		EscapeXML(`a & b <c> "d" 'e'`))
	assert.Equal(t, "", EscapeXML(""))
}

func TestMessageLayout(t *testing.T) {
	b := fixedBuilder(NewSequence(time.Unix(0, 0)))
	msg := b.Message("1001", "<Body/>", "nota <especial>")

	require.True(t, strings.HasPrefix(msg, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, msg, "<TipoMsg>1001</TipoMsg>")
	assert.Contains(t, msg, "<Emisor>00020</Emisor>")
	assert.Contains(t, msg, "<Destinatario>00000</Destinatario>")
	assert.Contains(t, msg, "<FechaCreacionMsg>20241025143000</FechaCreacionMsg>")
	assert.Contains(t, msg, "<Observaciones>nota &lt;especial&gt;</Observaciones>")
	assert.Contains(t, msg, "<CuerpoMensaje>\n<Body/>\n\t</CuerpoMensaje>")

	noObs := b.Message("1001", "<Body/>", "")
	assert.NotContains(t, noObs, "<Observaciones>")
}

func TestRegistroPositivoBody(t *testing.T) {
	req := models.RegistroPositivoRequest{
		IMEI:                          "355195000000017",
		TipoUsuarioPropietario:        "1",
		TipoIdentificacionPropietario: "1",
		IdentificacionPropietario:     "1020304050",
		NombreRazonSocialPropietario:  "Perez & Hijos",
		DireccionPropietario:          "Calle 1",
		TelefonoContactoPropietario:   "3001234567",
	}
	body := RegistroPositivoBody(req)

	assert.True(t, strings.HasPrefix(body, "<SolicitudRegistroPositivo>"))
	assert.Contains(t, body, "<Imei>355195000000017</Imei>")
	assert.Contains(t, body, "<NombreRazonSocialPropietario>Perez &amp; Hijos</NombreRazonSocialPropietario>")
	assert.NotContains(t, body, "<Imsi>", "empty optional fields are omitted")
	assert.NotContains(t, body, "<Msisdn>")
}

func TestRegistroNegativoBody(t *testing.T) {
	req := models.RegistroNegativoRequest{
		IMEI:        "355195000000017",
		TipoReporte: "1",
		// Optional flags present only when set.
		EmpleoViolencia: "1",
	}
	body := RegistroNegativoBody(req, "20241025143000")

	assert.Contains(t, body, "<Tecnologia>01</Tecnologia>")
	assert.Contains(t, body, "<FechaReporte>20241025143000</FechaReporte>")
	assert.Contains(t, body, "<EmpleoViolencia>1</EmpleoViolencia>")
	assert.NotContains(t, body, "<UtilizacionArmas>")
	assert.NotContains(t, body, "<VictimaMenorEdad>")

	// Element order is fixed by the registry schema.
	imeiIdx := strings.Index(body, "<Imei>")
	tecIdx := strings.Index(body, "<Tecnologia>")
	tipoIdx := strings.Index(body, "<TipoReporte>")
	assert.Less(t, imeiIdx, tecIdx)
	assert.Less(t, tecIdx, tipoIdx)
}

func TestModificacionPositivoBodyOwnerFieldsAlwaysPresent(t *testing.T) {
	req := models.ModificacionPositivoRequest{
		IMEI:                          "355195000000017",
		TipoModificacion:              "1",
		TipoUsuarioPropietario:        "1",
		TipoIdentificacionPropietario: "1",
	}
	body := ModificacionPositivoBody(req)

	assert.Contains(t, body, "<NombreRazonSocialPropietario></NombreRazonSocialPropietario>")
	assert.Contains(t, body, "<DireccionPropietario></DireccionPropietario>")
	assert.Contains(t, body, "<TelefonoContactoPropietario></TelefonoContactoPropietario>")
	assert.NotContains(t, body, "<TipoUsuarioAutorizado>")
	assert.NotContains(t, body, "<IdentificacionPropietarioAnterior>")
	assert.Contains(t, body, "<TipoModificacion>1</TipoModificacion>")
}

func TestQueryDocuments(t *testing.T) {
	neg := NegativaQuery("355195000000017")
	assert.True(t, strings.HasPrefix(neg, "<![CDATA["))
	assert.True(t, strings.HasSuffix(neg, "]]>"))
	assert.Contains(t, neg, "<TipoConsulta>1</TipoConsulta>")
	assert.Contains(t, neg, "<DatoConsulta>355195000000017</DatoConsulta>")

	pos := PositivaQuery("355195000000017", "1", "1020304050")
	assert.Contains(t, pos, "<ConsultaPositiva>")
	assert.Contains(t, pos, "<Imei>355195000000017</Imei>")
	assert.Contains(t, pos, "<TipoIdentificacionPropietario>1</TipoIdentificacionPropietario>")
	assert.Contains(t, pos, "<IdentificacionPropietario>1020304050</IdentificacionPropietario>")
}
