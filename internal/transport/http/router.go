package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"srtm-gateway/internal/platform/metrics"
	"srtm-gateway/internal/platform/middleware"
)

// NewRouter wires the middleware chain, the gateway endpoints and the
// Prometheus scrape endpoint.
func NewRouter(h *Handler, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	h.Register(r)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	return r
}
