// Package actions implements the SOAP client for the SRTM action service:
// registrations, modifications and cancellations on the positive and negative
// device lists. The service speaks SOAP 1.1 wrapped in multipart/related MIME
// and acknowledges every accepted message with the literal text "ack".
package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"srtm-gateway/internal/domain"
	"srtm-gateway/internal/registry/envelope"
	"srtm-gateway/internal/registry/models"
)

const (
	serviceNamespace = "http://service.client.xcewsmulti.iecisa.es"
	defaultTimeout   = 30 * time.Second

	// maxResponseBytes bounds how much of an upstream response is read.
	maxResponseBytes = 4 << 20
)

// Config carries the connection settings for the action service.
type Config struct {
	Endpoint string
	UserID   string
	Password string
	Timeout  time.Duration
}

// Types maps each operation to its registry message-type code. The codes are
// configurable upstream, so nothing below hardcodes the conventional
// 1001..5001 values.
type Types struct {
	RegistroPositivo     string
	RegistroNegativo     string
	CancelacionNegativo  string
	ModificacionPositivo string
	CancelacionPositivo  string
}

// ProcessCategories returns the message-type → 2-digit process category map
// consumed by the envelope builder.
func (t Types) ProcessCategories() map[string]string {
	return map[string]string{
		t.RegistroPositivo:     "01",
		t.RegistroNegativo:     "02",
		t.CancelacionNegativo:  "03",
		t.ModificacionPositivo: "04",
		t.CancelacionPositivo:  "05",
	}
}

// Client sends action messages to the SRTM registry. Every method returns a
// fully populated Outcome; transport and protocol failures are folded into it
// rather than surfaced as errors, so the caller can audit and respond
// uniformly.
type Client struct {
	cfg     Config
	types   Types
	builder *envelope.Builder
	httpc   *http.Client
	logger  *slog.Logger
}

// New validates the connection settings and returns a ready client. Missing
// endpoint or credentials are a configuration error; the caller decides
// whether to run degraded without the client.
func New(cfg Config, types Types, builder *envelope.Builder, logger *slog.Logger) (*Client, error) {
	if cfg.Endpoint == "" || cfg.UserID == "" || cfg.Password == "" {
		return nil, errors.New("actions: endpoint, user id and password are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:     cfg,
		types:   types,
		builder: builder,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}, nil
}

// RegistrarPositivo submits a positive-list registration.
func (c *Client) RegistrarPositivo(ctx context.Context, req models.RegistroPositivoRequest) *domain.Outcome {
	body := envelope.RegistroPositivoBody(req)
	return c.send(ctx, c.types.RegistroPositivo, body, req.Observaciones)
}

// RegistrarNegativo submits a theft or loss report. The report date is the
// submission instant, not a caller-supplied value.
func (c *Client) RegistrarNegativo(ctx context.Context, req models.RegistroNegativoRequest) *domain.Outcome {
	body := envelope.RegistroNegativoBody(req, c.builder.Timestamp())
	return c.send(ctx, c.types.RegistroNegativo, body, req.Observaciones)
}

// CancelarNegativo lifts a previous negative report, identified by IMEI and
// the original report date.
func (c *Client) CancelarNegativo(ctx context.Context, req models.CancelacionNegativoRequest) *domain.Outcome {
	body := envelope.CancelacionNegativoBody(req)
	return c.send(ctx, c.types.CancelacionNegativo, body, req.Observaciones)
}

// ModificarPositivo updates an existing positive-list record.
func (c *Client) ModificarPositivo(ctx context.Context, req models.ModificacionPositivoRequest) *domain.Outcome {
	body := envelope.ModificacionPositivoBody(req)
	return c.send(ctx, c.types.ModificacionPositivo, body, req.Observaciones)
}

// CancelarPositivo removes a device from the positive list.
func (c *Client) CancelarPositivo(ctx context.Context, req models.CancelacionPositivoRequest) *domain.Outcome {
	body := envelope.CancelacionPositivoBody(req)
	return c.send(ctx, c.types.CancelacionPositivo, body, req.Observaciones)
}

// send wraps the BDA message in the SOAP + MIME framing, posts it once and
// classifies the acknowledgement. There is no retry; the registry treats each
// message identifier as unique and a blind resend could double-register.
func (c *Client) send(ctx context.Context, msgType, body, observaciones string) *domain.Outcome {
	start := time.Now()
	out := domain.NewOutcome(start)
	defer out.Finalize(start)

	xmlPayload := c.builder.Message(msgType, body, observaciones)
	c.logger.InfoContext(ctx, "transaccion iniciada", "tipo_msg", msgType)
	c.logger.DebugContext(ctx, "request xml", "tipo_msg", msgType, "payload", xmlPayload)

	soapEnvelope := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>` +
		`<ns1:receiveMessage xmlns:ns1="` + serviceNamespace + `">` +
		`<userId>` + c.cfg.UserID + `</userId>` +
		`<password>` + c.cfg.Password + `</password>` +
		`<xmlMsg>` + envelope.EscapeXML(xmlPayload) + `</xmlMsg>` +
		`</ns1:receiveMessage></soap:Body></soap:Envelope>`

	boundary := "----=" + randomHex()
	startCID := "<" + randomHex() + ">"
	payload := strings.Join([]string{
		"--" + boundary, "Content-Type: text/xml; charset=utf-8", "Content-ID: " + startCID, "", soapEnvelope,
		"--" + boundary, "Content-Type: text/plain", "Content-ID: <sender>", "", envelope.OperatorID,
		"--" + boundary, "Content-Type: text/plain", "Content-ID: <receiver>", "", envelope.ReceiverID,
		"--" + boundary, "Content-Type: text/plain", "Content-ID: <typeMsg>", "", msgType,
		"--" + boundary + "--",
	}, "\r\n")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(payload))
	if err != nil {
		out.Message = "Error inesperado en la comunicación: " + err.Error()
		c.logFinish(ctx, msgType, out)
		return out
	}
	req.Header.Set("Content-Type",
		fmt.Sprintf(`multipart/related; type="text/xml"; start="%s"; boundary="%s"`, startCID, boundary))
	req.Header.Set("SOAPAction", `""`)

	res, err := c.httpc.Do(req)
	if err != nil {
		out.Message = "Error inesperado en la comunicación: " + err.Error()
		c.logFinish(ctx, msgType, out)
		return out
	}
	defer res.Body.Close()

	out.HTTPStatus = res.StatusCode
	resBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		out.Message = "Error inesperado en la comunicación: " + err.Error()
		c.logFinish(ctx, msgType, out)
		return out
	}

	doc := etree.NewDocument()
	parseErr := doc.ReadFromBytes(resBody)
	if parseErr == nil && doc.Root() != nil {
		if el := doc.FindElement("//*[local-name()='Fault']"); el != nil {
			f := parseFault(el)
			out.Message = "Error SOAP: " + f.str
			out.Raw = domain.RawString(f.detail)
			c.logFinish(ctx, msgType, out)
			return out
		}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		out.Message = fmt.Sprintf("Error inesperado en la comunicación: el servidor respondió %d", res.StatusCode)
		c.logFinish(ctx, msgType, out)
		return out
	}
	if parseErr != nil || doc.Root() == nil {
		out.Message = "Error inesperado en la comunicación: respuesta no válida del servidor"
		c.logFinish(ctx, msgType, out)
		return out
	}

	result := ""
	if el := doc.FindElement("//*[local-name()='receiveMessageReturn']"); el != nil {
		result = strings.TrimSpace(el.Text())
	}
	out.Raw = domain.RawString(result)
	if result == "ack" {
		out.Success = true
		out.Message = fmt.Sprintf("Solicitud %s aceptada.", msgType)
	} else {
		out.Message = fmt.Sprintf("Solicitud %s rechazada por el servidor.", msgType)
		out.ErrorCode = result
	}
	c.logFinish(ctx, msgType, out)
	return out
}

func (c *Client) logFinish(ctx context.Context, msgType string, out *domain.Outcome) {
	level := slog.LevelInfo
	if !out.Success {
		level = slog.LevelWarn
	}
	c.logger.Log(ctx, level, "transaccion finalizada",
		"tipo_msg", msgType,
		"success", out.Success,
		"http_status", out.HTTPStatus,
		"message", out.Message,
	)
}

func randomHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

type fault struct {
	str    string
	detail string
}

// parseFault extracts the faultstring and detail text from a Fault element.
func parseFault(el *etree.Element) fault {
	f := fault{}
	if fs := el.FindElement("./*[local-name()='faultstring']"); fs != nil {
		f.str = strings.TrimSpace(fs.Text())
	}
	if det := el.FindElement("./*[local-name()='detail']"); det != nil {
		f.detail = strings.TrimSpace(det.Text())
	}
	return f
}
