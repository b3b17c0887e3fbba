package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"srtm-gateway/internal/domain"
	domainerrors "srtm-gateway/pkg/domain-errors"
)

// timestampLayout renders transaction timestamps with millisecond precision.
const timestampLayout = "2006-01-02 15:04:05.000"

// APIResponse is the uniform envelope every registry endpoint answers with,
// success or failure.
type APIResponse struct {
	Success              bool             `json:"success"`
	HTTPStatus           int              `json:"http_status"`
	Message              string           `json:"message"`
	ErrorCode            string           `json:"error_code,omitempty"`
	RawResponse          domain.RawResult `json:"raw_response"`
	TransactionTimestamp string           `json:"transaction_timestamp"`
}

func newAPIResponse(out *domain.Outcome) APIResponse {
	return APIResponse{
		Success:              out.Success,
		HTTPStatus:           out.HTTPStatus,
		Message:              out.Message,
		ErrorCode:            out.ErrorCode,
		RawResponse:          out.Raw,
		TransactionTimestamp: out.Timestamp.Format(timestampLayout),
	}
}

// validationResponse reports every failing field so a caller can fix the
// request in one round trip.
type validationResponse struct {
	Detail     string   `json:"detail"`
	Errors     []string `json:"errors"`
	Success    bool     `json:"success"`
	HTTPStatus int      `json:"http_status"`
	ErrorCode  string   `json:"error_code"`
}

// errorResponse is the envelope for non-validation failures raised by the
// gateway itself (unavailable client, unhandled fault).
type errorResponse struct {
	Detail     string `json:"detail"`
	Success    bool   `json:"success"`
	HTTPStatus int    `json:"http_status"`
	ErrorCode  string `json:"error_code"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}

func writeValidation(w http.ResponseWriter, logger *slog.Logger, errs []string) {
	e := domainerrors.NewValidation(
		"Error de validación en la solicitud. Uno o más campos son inválidos o están ausentes.", errs)
	status := domainerrors.ToHTTPStatus(e.Code)
	writeJSON(w, logger, status, validationResponse{
		Detail:     e.Message,
		Errors:     e.Fields,
		Success:    false,
		HTTPStatus: status,
		ErrorCode:  string(e.Code),
	})
}

func writeError(w http.ResponseWriter, logger *slog.Logger, e *domainerrors.Error) {
	status := domainerrors.ToHTTPStatus(e.Code)
	writeJSON(w, logger, status, errorResponse{
		Detail:     e.Message,
		Success:    false,
		HTTPStatus: status,
		ErrorCode:  string(e.Code),
	})
}
