package queries

import (
	"errors"
	"strings"
	"time"

	"github.com/beevik/etree"

	"srtm-gateway/internal/domain"
)

// The query service returns its result as an XML document embedded as text
// inside the SOAP return element. That inner document carries no response-type
// discriminator, so classification probes for marker elements in a fixed
// priority order: explicit error, negative-list record, positive-list record,
// then unknown.

// Classification is the interpreted result of one inner response document.
type Classification struct {
	Success   bool
	Message   string
	ErrorCode string
	Raw       domain.RawResult
}

const missingValue = "N/A"

// Classify parses the inner response document and maps it onto a
// Classification. It returns an error only when the document is malformed or
// a report date fails to parse; callers translate that into a generic
// processing failure.
func Classify(inner string) (Classification, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(inner); err != nil {
		return Classification{}, err
	}
	if doc.Root() == nil {
		return Classification{}, errors.New("inner response has no root element")
	}

	if errNode := doc.FindElement("//*[local-name()='RespuestaConsultaBDAError']"); errNode != nil {
		code := childText(errNode, "CodigoError", missingValue)
		desc := childText(errNode, "DescripcionError", "Error desconocido")
		return Classification{
			Message:   "Error de la BDA: " + desc,
			ErrorCode: code,
			Raw: domain.RawRecordList(domain.NewRecord(
				"CodigoError", code,
				"DescripcionError", desc,
			)),
		}, nil
	}

	if neg := doc.FindElement("//*[local-name()='RegistroBDANegativa']"); neg != nil {
		fecha := missingValue
		if raw := childText(neg, "FechaReporte", ""); raw != "" {
			parsed, err := time.Parse("20060102150405", raw)
			if err != nil {
				return Classification{}, err
			}
			// Year-day-month ordering matches the upstream report layout.
			fecha = parsed.Format("2006-02-01 15:04:05")
		}
		return Classification{
			Success: true,
			Message: "Consulta negativa procesada exitosamente.",
			Raw: domain.RawRecordList(domain.NewRecord(
				"TipoRespuesta", anyText(doc, "TipoRespuesta", missingValue),
				"RespuestaConsultaBDANegativa", "Registro Encontrado",
				"Imei", childText(neg, "Imei", missingValue),
				"Tecnologia", childText(neg, "Tecnologia", missingValue),
				"FechaReporte", fecha,
			)),
		}, nil
	}

	if doc.FindElement("//*[local-name()='RegistroBDAPositiva']") != nil {
		// TODO: map the positive record fields once the upstream schema for
		// RegistroBDAPositiva is published.
		return Classification{
			Success: true,
			Message: "Consulta positiva procesada exitosamente (Estructura de datos pendiente).",
			Raw: domain.RawRecordList(domain.NewRecord(
				"status", "Registro Positivo Encontrado",
				"data", "...",
			)),
		}, nil
	}

	return Classification{
		Message: "La estructura de la respuesta no coincide con los patrones conocidos.",
		Raw: domain.RawRecordList(domain.NewRecord(
			"error", "Estructura de respuesta desconocida",
			"response_body", inner,
		)),
	}, nil
}

// childText returns the trimmed text of the first direct child with the given
// local name, or def when the child is absent.
func childText(parent *etree.Element, name, def string) string {
	el := parent.FindElement("./*[local-name()='" + name + "']")
	if el == nil {
		return def
	}
	return strings.TrimSpace(el.Text())
}

// anyText searches the whole document for the first element with the given
// local name.
func anyText(doc *etree.Document, name, def string) string {
	el := doc.FindElement("//*[local-name()='" + name + "']")
	if el == nil {
		return def
	}
	return strings.TrimSpace(el.Text())
}
