// Package metrics holds the Prometheus instruments for the gateway.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	Transactions *prometheus.CounterVec
	SOAPDuration *prometheus.HistogramVec
	Webhooks     *prometheus.CounterVec
}

// New creates and registers all metrics on a private registry so tests can
// construct as many instances as they need.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "srtm_gateway_transactions_total",
			Help: "Registry transactions by category, message type and result.",
		}, []string{"category", "msg_type", "result"}),
		SOAPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "srtm_gateway_soap_duration_seconds",
			Help:    "Round-trip duration of upstream SOAP calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"category"}),
		Webhooks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "srtm_gateway_webhook_callbacks_total",
			Help: "Webhook callbacks by message type and disposition.",
		}, []string{"msg_type", "result"}),
	}
}

// ObserveTransaction records one completed registry transaction.
func (m *Metrics) ObserveTransaction(category, msgType string, success bool, seconds float64) {
	result := "failure"
	if success {
		result = "success"
	}
	m.Transactions.WithLabelValues(category, msgType, result).Inc()
	m.SOAPDuration.WithLabelValues(category).Observe(seconds)
}

// ObserveWebhook records one webhook callback.
func (m *Metrics) ObserveWebhook(msgType, result string) {
	m.Webhooks.WithLabelValues(msgType, result).Inc()
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
