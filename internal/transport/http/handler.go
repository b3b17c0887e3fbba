// Package httptransport is the REST surface of the gateway. Handlers decode
// and validate requests, delegate to the SOAP clients and hand every
// completed transaction to the audit service; business decisions stay in the
// registry packages.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"srtm-gateway/internal/audit"
	"srtm-gateway/internal/domain"
	"srtm-gateway/internal/platform/config"
	"srtm-gateway/internal/platform/metrics"
	"srtm-gateway/internal/registry/models"
	domainerrors "srtm-gateway/pkg/domain-errors"
)

const (
	apiName    = "SRTM Wrapper API"
	apiVersion = "1.5.0"
)

// Query operation names as recorded in the audit trail.
const (
	queryConsultaPositiva            = "consultaBDAPositiva"
	queryConsultaNegativa            = "consultaBDANegativa"
	queryConsultaNegativaTipoReporte = "consultaBDANegativaTipoReporte"
)

// ActionsClient is the action-service contract the handlers depend on.
type ActionsClient interface {
	RegistrarPositivo(ctx context.Context, req models.RegistroPositivoRequest) *domain.Outcome
	RegistrarNegativo(ctx context.Context, req models.RegistroNegativoRequest) *domain.Outcome
	CancelarNegativo(ctx context.Context, req models.CancelacionNegativoRequest) *domain.Outcome
	ModificarPositivo(ctx context.Context, req models.ModificacionPositivoRequest) *domain.Outcome
	CancelarPositivo(ctx context.Context, req models.CancelacionPositivoRequest) *domain.Outcome
}

// QueriesClient is the query-service contract the handlers depend on.
type QueriesClient interface {
	ConsultaNegativa(ctx context.Context, imei string) *domain.Outcome
	ConsultaNegativaTipoReporte(ctx context.Context, imei string) *domain.Outcome
	ConsultaPositiva(ctx context.Context, imei, tipoIdentificacion, identificacion string) *domain.Outcome
}

// Auditor records completed transactions.
type Auditor interface {
	Record(ctx context.Context, rec audit.Record)
}

// Handler is the thin HTTP layer over the SOAP clients. Either client may be
// nil when its credentials were missing at startup; the affected endpoints
// then answer 503 while the rest of the API stays up.
type Handler struct {
	actions ActionsClient
	queries QueriesClient
	auditor Auditor
	types   config.MessageTypes
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewHandler(
	actions ActionsClient,
	queries QueriesClient,
	auditor Auditor,
	types config.MessageTypes,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		actions: actions,
		queries: queries,
		auditor: auditor,
		types:   types,
		metrics: m,
		logger:  logger,
	}
}

// Register wires all public endpoints onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/registro-positivo", h.registroPositivo)
	r.Post("/registro-negativo", h.registroNegativo)
	r.Post("/cancelacion-negativo", h.cancelacionNegativo)
	r.Post("/modificacion-positivo", h.modificacionPositivo)
	r.Post("/cancelacion-positivo", h.cancelacionPositivo)

	r.Post("/consulta/positiva", h.consultaPositiva)
	r.Get("/consulta/negativa/{imei}", h.consultaNegativa)
	r.Get("/consulta/negativa/tipo-reporte/{imei}", h.consultaNegativaTipoReporte)

	r.Get("/health", h.health)
	r.Get("/info", h.info)
}

func (h *Handler) registroPositivo(w http.ResponseWriter, r *http.Request) {
	var req models.RegistroPositivoRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !h.requireActions(w) {
		return
	}
	h.logger.InfoContext(r.Context(), "procesando registro positivo", "imei", req.IMEI)
	out := h.actions.RegistrarPositivo(r.Context(), req)
	h.finish(w, r, audit.CategoryAction, h.types.RegistroPositivo, req.IMEI, req, out)
}

func (h *Handler) registroNegativo(w http.ResponseWriter, r *http.Request) {
	var req models.RegistroNegativoRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !h.requireActions(w) {
		return
	}
	h.logger.InfoContext(r.Context(), "procesando registro negativo", "imei", req.IMEI)
	out := h.actions.RegistrarNegativo(r.Context(), req)
	h.finish(w, r, audit.CategoryAction, h.types.RegistroNegativo, req.IMEI, req, out)
}

func (h *Handler) cancelacionNegativo(w http.ResponseWriter, r *http.Request) {
	var req models.CancelacionNegativoRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !h.requireActions(w) {
		return
	}
	h.logger.InfoContext(r.Context(), "procesando cancelacion negativo",
		"imei", req.IMEI, "fecha_reporte", req.FechaReporte)
	out := h.actions.CancelarNegativo(r.Context(), req)
	h.finish(w, r, audit.CategoryAction, h.types.CancelacionNegativo, req.IMEI, req, out)
}

func (h *Handler) modificacionPositivo(w http.ResponseWriter, r *http.Request) {
	var req models.ModificacionPositivoRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !h.requireActions(w) {
		return
	}
	h.logger.InfoContext(r.Context(), "procesando modificacion positivo", "imei", req.IMEI)
	out := h.actions.ModificarPositivo(r.Context(), req)
	h.finish(w, r, audit.CategoryAction, h.types.ModificacionPositivo, req.IMEI, req, out)
}

func (h *Handler) cancelacionPositivo(w http.ResponseWriter, r *http.Request) {
	var req models.CancelacionPositivoRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !h.requireActions(w) {
		return
	}
	h.logger.InfoContext(r.Context(), "procesando cancelacion positivo", "imei", req.IMEI)
	out := h.actions.CancelarPositivo(r.Context(), req)
	h.finish(w, r, audit.CategoryAction, h.types.CancelacionPositivo, req.IMEI, req, out)
}

func (h *Handler) consultaPositiva(w http.ResponseWriter, r *http.Request) {
	var req models.ConsultaPositivaRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !h.requireQueries(w) {
		return
	}
	h.logger.InfoContext(r.Context(), "procesando consulta positiva", "imei", req.IMEI)
	out := h.queries.ConsultaPositiva(r.Context(), req.IMEI,
		req.TipoIdentificacionPropietario, req.IdentificacionPropietario)
	h.finish(w, r, audit.CategoryQuery, queryConsultaPositiva, req.IMEI, req, out)
}

func (h *Handler) consultaNegativa(w http.ResponseWriter, r *http.Request) {
	req := models.ConsultaNegativaRequest{IMEI: chi.URLParam(r, "imei")}
	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		writeValidation(w, h.logger, errs)
		return
	}
	if !h.requireQueries(w) {
		return
	}
	h.logger.InfoContext(r.Context(), "procesando consulta negativa", "imei", req.IMEI)
	out := h.queries.ConsultaNegativa(r.Context(), req.IMEI)
	h.finish(w, r, audit.CategoryQuery, queryConsultaNegativa, req.IMEI, req, out)
}

func (h *Handler) consultaNegativaTipoReporte(w http.ResponseWriter, r *http.Request) {
	req := models.ConsultaNegativaRequest{IMEI: chi.URLParam(r, "imei")}
	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		writeValidation(w, h.logger, errs)
		return
	}
	if !h.requireQueries(w) {
		return
	}
	h.logger.InfoContext(r.Context(), "procesando consulta tipo reporte", "imei", req.IMEI)
	out := h.queries.ConsultaNegativaTipoReporte(r.Context(), req.IMEI)
	h.finish(w, r, audit.CategoryQuery, queryConsultaNegativaTipoReporte, req.IMEI, req, out)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "SRTM API funcionando correctamente",
		"version": apiVersion,
		"services": map[string]bool{
			"soap_client":     h.actions != nil,
			"consulta_client": h.queries != nil,
		},
	})
}

func (h *Handler) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"api_name":    apiName,
		"version":     apiVersion,
		"description": "API REST para interactuar con los servicios SOAP SRTM",
		"endpoints": map[string][]string{
			"acciones": {
				"POST /registro-positivo",
				"POST /registro-negativo",
				"POST /cancelacion-negativo",
				"POST /modificacion-positivo",
				"POST /cancelacion-positivo",
			},
			"consultas": {
				"POST /consulta/positiva",
				"GET /consulta/negativa/{imei}",
				"GET /consulta/negativa/tipo-reporte/{imei}",
			},
			"utilidad": {
				"GET /health",
				"GET /info",
				"GET /metrics",
			},
		},
	})
}

// validatable is implemented by every request model: normalize in place, then
// report all rule violations.
type validatable interface {
	Normalize()
	Validate() []string
}

// decodeAndValidate decodes the JSON body into req and runs its rules. On
// failure it writes the 422 validation envelope and reports false; the SOAP
// client is never reached with an invalid request.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req validatable) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeValidation(w, h.logger, []string{"Cuerpo de la solicitud inválido: " + err.Error()})
		return false
	}
	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		writeValidation(w, h.logger, errs)
		return false
	}
	return true
}

func (h *Handler) requireActions(w http.ResponseWriter) bool {
	if h.actions == nil {
		writeError(w, h.logger, domainerrors.New(domainerrors.CodeUnavailable,
			"Servicio no disponible: Cliente SOAP de acciones no inicializado."))
		return false
	}
	return true
}

func (h *Handler) requireQueries(w http.ResponseWriter) bool {
	if h.queries == nil {
		writeError(w, h.logger, domainerrors.New(domainerrors.CodeUnavailable,
			"Servicio no disponible: Cliente SOAP de consultas no inicializado."))
		return false
	}
	return true
}

// finish audits the transaction, updates metrics and writes the uniform
// envelope. Failures that reached the upstream keep HTTP 200 unless the
// outcome itself is a server-side fault (>= 500).
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, category audit.Category, msgType, imei string, req any, out *domain.Outcome) {
	rec, err := audit.FromTransaction(category, msgType, imei, req, out)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "no se pudo proyectar la transaccion", "error", err)
	} else {
		h.auditor.Record(r.Context(), rec)
	}
	h.metrics.ObserveTransaction(string(category), msgType, out.Success, out.ResponseTimeMS/1000)

	status := http.StatusOK
	if !out.Success && out.HTTPStatus >= http.StatusInternalServerError {
		status = out.HTTPStatus
	}
	writeJSON(w, h.logger, status, newAPIResponse(out))
}
