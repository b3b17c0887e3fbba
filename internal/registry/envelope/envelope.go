package envelope

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"srtm-gateway/internal/registry/models"
)

// Fixed participant codes for the BDA message header. The operator code also
// prefixes every generated identifier.
const (
	OperatorID = "00020"
	ReceiverID = "00000"
)

// Builder produces BDA XML documents and the identifiers embedded in them.
// It owns the mapping from message-type code to the 2-digit process category;
// the clock is injectable so tests can pin header timestamps.
type Builder struct {
	seq        *Sequence
	categories map[string]string
	now        func() time.Time
}

// NewBuilder returns a Builder over the given sequence source. categories
// maps message-type codes to 2-digit process categories; unknown types fall
// back to "00".
func NewBuilder(seq *Sequence, categories map[string]string) *Builder {
	return &Builder{seq: seq, categories: categories, now: time.Now}
}

// WithClock replaces the builder clock, for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// MessageID returns `<operator><yyyymmdd><7-digit sequence>`.
func (b *Builder) MessageID() string {
	return fmt.Sprintf("%s%s%07d", OperatorID, b.now().Format("20060102"), b.seq.NextMessage())
}

// ProcessID returns `<operator><yyyymmdd><2-digit category><5-digit sequence>`.
func (b *Builder) ProcessID(msgType string) string {
	category, ok := b.categories[msgType]
	if !ok {
		category = "00"
	}
	return fmt.Sprintf("%s%s%s%05d", OperatorID, b.now().Format("20060102"), category, b.seq.NextProcess())
}

// Timestamp returns the current instant in the registry's YYYYMMDDHHMMSS form.
func (b *Builder) Timestamp() string {
	return b.now().Format("20060102150405")
}

// EscapeXML entity-escapes free text inserted into element bodies.
func EscapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}

// Message assembles the full MensajeBDA document around a prebuilt body.
// Observaciones is omitted entirely when empty; the header identifiers are
// generated fresh on every call.
func (b *Builder) Message(msgType, body, observaciones string) string {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString(`<MensajeBDA xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` + "\n")
	buf.WriteString("\t<CabeceraMensaje>\n")
	buf.WriteString("\t\t<IdentificadorProceso>" + b.ProcessID(msgType) + "</IdentificadorProceso>\n")
	buf.WriteString("\t\t<IdentificadorMensaje>" + b.MessageID() + "</IdentificadorMensaje>\n")
	buf.WriteString("\t\t<FechaCreacionMsg>" + b.Timestamp() + "</FechaCreacionMsg>\n")
	buf.WriteString("\t\t<TipoMsg>" + msgType + "</TipoMsg>\n")
	buf.WriteString("\t\t<Emisor>" + OperatorID + "</Emisor>\n")
	buf.WriteString("\t\t<Destinatario>" + ReceiverID + "</Destinatario>\n")
	if observaciones != "" {
		buf.WriteString("\t\t<Observaciones>" + EscapeXML(observaciones) + "</Observaciones>\n")
	}
	buf.WriteString("\t</CabeceraMensaje>\n")
	buf.WriteString("\t<CuerpoMensaje>\n")
	buf.WriteString(body)
	buf.WriteString("\n\t</CuerpoMensaje>\n")
	buf.WriteString("</MensajeBDA>")
	return buf.String()
}

// writeText emits an element with entity-escaped text, skipping it entirely
// when the value is empty. Always-present fields go through writeTextAlways
// or writeCoded instead; their omission would be a caller bug.
func writeText(buf *bytes.Buffer, tag, value string) {
	if value == "" {
		return
	}
	writeTextAlways(buf, tag, value)
}

func writeTextAlways(buf *bytes.Buffer, tag, value string) {
	buf.WriteString("<" + tag + ">" + EscapeXML(value) + "</" + tag + ">")
}

// writeCoded emits an element unescaped. Coded fields are restricted to known
// symbol sets by validation, so escaping would only obscure the payload.
func writeCoded(buf *bytes.Buffer, tag, value string) {
	buf.WriteString("<" + tag + ">" + value + "</" + tag + ">")
}

// writeCodedOptional emits a coded element only when a value is present.
func writeCodedOptional(buf *bytes.Buffer, tag, value string) {
	if value == "" {
		return
	}
	writeCoded(buf, tag, value)
}

// RegistroPositivoBody renders the 1001 request body.
func RegistroPositivoBody(req models.RegistroPositivoRequest) string {
	var buf bytes.Buffer
	buf.WriteString("<SolicitudRegistroPositivo>")
	writeCoded(&buf, "Imei", req.IMEI)
	writeText(&buf, "Imsi", req.IMSI)
	writeText(&buf, "Msisdn", req.MSISDN)
	writeText(&buf, "NombreRazonSocialPropietario", req.NombreRazonSocialPropietario)
	writeText(&buf, "DireccionPropietario", req.DireccionPropietario)
	writeCoded(&buf, "TipoUsuarioPropietario", req.TipoUsuarioPropietario)
	writeCoded(&buf, "TipoIdentificacionPropietario", req.TipoIdentificacionPropietario)
	writeTextAlways(&buf, "IdentificacionPropietario", req.IdentificacionPropietario)
	writeText(&buf, "TelefonoContactoPropietario", req.TelefonoContactoPropietario)
	buf.WriteString("</SolicitudRegistroPositivo>")
	return buf.String()
}

// RegistroNegativoBody renders the 2001 request body. The report date is the
// build instant; Tecnologia is pinned to GSM ("01") by the upstream contract.
func RegistroNegativoBody(req models.RegistroNegativoRequest, fechaReporte string) string {
	var buf bytes.Buffer
	buf.WriteString("<SolicitudRegistroNegativo>")
	writeCoded(&buf, "Imei", req.IMEI)
	writeCoded(&buf, "Tecnologia", "01")
	writeCoded(&buf, "FechaReporte", fechaReporte)
	writeText(&buf, "NombreRazonSocialReporte", req.NombreReporte)
	writeText(&buf, "TipoIdentificacionReporte", req.TipoIdentificacionReporte)
	writeText(&buf, "IdentificacionReporte", req.IdentificacionReporte)
	writeText(&buf, "DireccionReporte", req.DireccionReporte)
	writeText(&buf, "TelefonoContactoReporte", req.TelefonoReporte)
	writeText(&buf, "DepartamentoReporte", req.DepartamentoReporte)
	writeText(&buf, "CiudadReporte", req.CiudadReporte)
	writeCoded(&buf, "TipoReporte", req.TipoReporte)
	writeCodedOptional(&buf, "EmpleoViolencia", req.EmpleoViolencia)
	writeCodedOptional(&buf, "UtilizacionArmas", req.UtilizacionArmas)
	writeCodedOptional(&buf, "VictimaMenorEdad", req.VictimaMenorEdad)
	writeText(&buf, "CorreoElectronico", req.CorreoElectronico)
	buf.WriteString("</SolicitudRegistroNegativo>")
	return buf.String()
}

// CancelacionNegativoBody renders the 3001 request body. It carries the
// original report date supplied by the caller, not the build instant.
func CancelacionNegativoBody(req models.CancelacionNegativoRequest) string {
	var buf bytes.Buffer
	buf.WriteString("<SolicitudCancelacionRegistroNegativo>")
	writeCoded(&buf, "Imei", req.IMEI)
	writeCoded(&buf, "FechaReporte", req.FechaReporte)
	buf.WriteString("</SolicitudCancelacionRegistroNegativo>")
	return buf.String()
}

// ModificacionPositivoBody renders the 4001 request body, including the
// optional authorized-user and previous-owner blocks.
func ModificacionPositivoBody(req models.ModificacionPositivoRequest) string {
	var buf bytes.Buffer
	buf.WriteString("<SolicitudModificacionRegistroPositivo>")
	writeCoded(&buf, "Imei", req.IMEI)
	writeText(&buf, "Imsi", req.IMSI)
	writeText(&buf, "Msisdn", req.MSISDN)
	writeTextAlways(&buf, "NombreRazonSocialPropietario", req.NombreRazonSocialPropietario)
	writeTextAlways(&buf, "DireccionPropietario", req.DireccionPropietario)
	writeCoded(&buf, "TipoUsuarioPropietario", req.TipoUsuarioPropietario)
	writeCoded(&buf, "TipoIdentificacionPropietario", req.TipoIdentificacionPropietario)
	writeTextAlways(&buf, "IdentificacionPropietario", req.IdentificacionPropietario)
	writeTextAlways(&buf, "TelefonoContactoPropietario", req.TelefonoContactoPropietario)
	writeText(&buf, "NombreRazonSocialAutorizado", req.NombreRazonSocialAutorizado)
	writeCodedOptional(&buf, "TipoUsuarioAutorizado", req.TipoUsuarioAutorizado)
	writeCodedOptional(&buf, "TipoIdentificacionAutorizado", req.TipoIdentificacionAutorizado)
	writeText(&buf, "IdentificacionAutorizado", req.IdentificacionAutorizado)
	writeText(&buf, "TelefonoContactoAutorizado", req.TelefonoContactoAutorizado)
	writeText(&buf, "TipoIdentificacionPropietarioAnterior", req.TipoIdentificacionPropietarioAnterior)
	writeText(&buf, "IdentificacionPropietarioAnterior", req.IdentificacionPropietarioAnterior)
	writeCoded(&buf, "TipoModificacion", req.TipoModificacion)
	buf.WriteString("</SolicitudModificacionRegistroPositivo>")
	return buf.String()
}

// CancelacionPositivoBody renders the 5001 request body.
func CancelacionPositivoBody(req models.CancelacionPositivoRequest) string {
	var buf bytes.Buffer
	buf.WriteString("<SolicitudCancelacionRegistroPositivo>")
	writeCoded(&buf, "Imei", req.IMEI)
	writeCoded(&buf, "TipoUsuarioPropietario", req.TipoUsuarioPropietario)
	writeCoded(&buf, "TipoIdentificacionPropietario", req.TipoIdentificacionPropietario)
	writeTextAlways(&buf, "IdentificacionPropietario", req.IdentificacionPropietario)
	buf.WriteString("</SolicitudCancelacionRegistroPositivo>")
	return buf.String()
}

// NegativaQuery renders the CDATA-wrapped ConsultaBDA document for negative
// list lookups; the same document serves the report-type variant.
func NegativaQuery(imei string) string {
	return `<![CDATA[<?xml version="1.0" encoding="UTF-8"?>` +
		`<ConsultaBDA xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<CuerpoConsulta><Consulta>` +
		`<TipoConsulta>1</TipoConsulta>` +
		`<DatoConsulta>` + imei + `</DatoConsulta>` +
		`</Consulta></CuerpoConsulta></ConsultaBDA>]]>`
}

// PositivaQuery renders the CDATA-wrapped ConsultaBDA document for positive
// list lookups.
func PositivaQuery(imei, tipoIdentificacion, identificacion string) string {
	return `<![CDATA[<?xml version="1.0" encoding="UTF-8"?>` +
		`<ConsultaBDA xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<CuerpoConsulta><ConsultaPositiva>` +
		`<Imei>` + imei + `</Imei>` +
		`<TipoIdentificacionPropietario>` + tipoIdentificacion + `</TipoIdentificacionPropietario>` +
		`<IdentificacionPropietario>` + identificacion + `</IdentificacionPropietario>` +
		`</ConsultaPositiva></CuerpoConsulta></ConsultaBDA>]]>`
}
