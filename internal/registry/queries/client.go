// Package queries implements the SOAP client for the ConsultaBDA query
// service: synchronous lookups against the positive and negative device
// lists. Unlike the action service, queries use a plain SOAP 1.1 envelope
// whose operation element names the lookup being performed.
package queries

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

	"srtm-gateway/internal/domain"
	"srtm-gateway/internal/registry/envelope"
)

const (
	serviceNamespace = "http://service.consultabda.srtm.iecisa.co"
	defaultTimeout   = 30 * time.Second

	maxResponseBytes = 4 << 20
)

// Operation names accepted by the query service. The tipo-reporte variant
// reuses the negative-list query document against a separate operation.
const (
	opConsultaNegativa            = "consultaBDANegativa"
	opConsultaNegativaTipoReporte = "consultaBDANegativaTipoReporte"
	opConsultaPositiva            = "consultaBDAPositiva"
)

// Config carries the connection settings for the query service.
type Config struct {
	Endpoint string
	UserID   string
	Password string
	Timeout  time.Duration
}

// Client performs device-list lookups. As with the action client, every
// method returns a populated Outcome and never an error; failures are folded
// into the outcome so the transport layer responds uniformly.
type Client struct {
	cfg    Config
	httpc  *http.Client
	logger *slog.Logger
}

// New validates the connection settings and returns a ready client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Endpoint == "" || cfg.UserID == "" || cfg.Password == "" {
		return nil, errors.New("queries: endpoint, user id and password are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// ConsultaNegativa looks the IMEI up on the negative list.
func (c *Client) ConsultaNegativa(ctx context.Context, imei string) *domain.Outcome {
	return c.send(ctx, opConsultaNegativa, envelope.NegativaQuery(imei))
}

// ConsultaNegativaTipoReporte looks the IMEI up on the negative list and asks
// for the report type of the match.
func (c *Client) ConsultaNegativaTipoReporte(ctx context.Context, imei string) *domain.Outcome {
	return c.send(ctx, opConsultaNegativaTipoReporte, envelope.NegativaQuery(imei))
}

// ConsultaPositiva looks the IMEI/owner pair up on the positive list.
func (c *Client) ConsultaPositiva(ctx context.Context, imei, tipoIdentificacion, identificacion string) *domain.Outcome {
	return c.send(ctx, opConsultaPositiva, envelope.PositivaQuery(imei, tipoIdentificacion, identificacion))
}

// send posts one query and classifies the response. Any transport fault,
// non-2xx status or malformed document collapses into the generic processing
// failure with status 500; an empty return element is reported as "no
// results" instead.
func (c *Client) send(ctx context.Context, operation, xmlPayload string) *domain.Outcome {
	start := time.Now()
	out := domain.NewOutcome(start)
	defer out.Finalize(start)

	soapEnvelope := fmt.Sprintf(
		`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ser="%s">
   <soapenv:Header/>
   <soapenv:Body>
      <ser:%s>
         <ser:usuario>%s</ser:usuario>
         <ser:password>%s</ser:password>
         <ser:xml>%s</ser:xml>
      </ser:%s>
   </soapenv:Body>
</soapenv:Envelope>`,
		serviceNamespace, operation, c.cfg.UserID, c.cfg.Password, xmlPayload, operation)

	c.logger.InfoContext(ctx, "consulta iniciada", "operation", operation)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(soapEnvelope))
	if err != nil {
		return c.processingError(ctx, operation, out, err)
	}
	req.Header.Set("Content-Type", "text/xml;charset=UTF-8")
	req.Header.Set("SOAPAction", `""`)

	res, err := c.httpc.Do(req)
	if err != nil {
		return c.processingError(ctx, operation, out, err)
	}
	defer res.Body.Close()

	out.HTTPStatus = res.StatusCode
	resBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return c.processingError(ctx, operation, out, err)
	}
	c.logger.DebugContext(ctx, "respuesta soap cruda", "operation", operation, "body", string(resBody))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return c.processingError(ctx, operation, out,
			fmt.Errorf("el servidor respondió %d", res.StatusCode))
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(resBody); err != nil {
		return c.processingError(ctx, operation, out, err)
	}
	if doc.Root() == nil {
		return c.processingError(ctx, operation, out, errors.New("respuesta sin documento XML"))
	}

	ret := doc.FindElement("//*[local-name()='" + operation + "Return']")
	if ret == nil || strings.TrimSpace(ret.Text()) == "" {
		out.Message = "La consulta no retornó resultados."
		out.Raw = domain.RawRecordList(domain.NewRecord(
			"error", "Tag de retorno vacío o no encontrado.",
		))
		c.logFinish(ctx, operation, out)
		return out
	}

	cl, err := Classify(ret.Text())
	if err != nil {
		return c.processingError(ctx, operation, out, err)
	}
	out.Success = cl.Success
	out.Message = cl.Message
	out.ErrorCode = cl.ErrorCode
	out.Raw = cl.Raw
	c.logFinish(ctx, operation, out)
	return out
}

// processingError resets the outcome to the generic query failure. The HTTP
// status is forced back to 500 even when the upstream answered, matching the
// single-failure-mode contract of the query surface.
func (c *Client) processingError(ctx context.Context, operation string, out *domain.Outcome, err error) *domain.Outcome {
	c.logger.ErrorContext(ctx, "error inesperado en consulta", "operation", operation, "error", err)
	out.Success = false
	out.HTTPStatus = 500
	out.Message = "Error inesperado en el procesamiento."
	c.logFinish(ctx, operation, out)
	return out
}

func (c *Client) logFinish(ctx context.Context, operation string, out *domain.Outcome) {
	c.logger.InfoContext(ctx, "consulta finalizada",
		"operation", operation,
		"success", out.Success,
		"http_status", out.HTTPStatus,
	)
}
