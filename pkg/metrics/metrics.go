// Package metrics exposes the server's Prometheus instrumentation
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every metric the server records
type Registry struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	ChainsTotal          prometheus.Gauge
	ChainOperationsTotal *prometheus.CounterVec
	ChainStepsPerSave    prometheus.Histogram

	UptimeSeconds prometheus.Gauge
}

// NewRegistry creates a registry with all metrics registered
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.HTTPRequestsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainmap_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chainmap_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestsInFlight = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "chainmap_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	r.ChainsTotal = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "chainmap_chains_total",
			Help: "Number of attack chains currently stored",
		},
	)

	r.ChainOperationsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainmap_chain_operations_total",
			Help: "Chain store operations by type and outcome",
		},
		[]string{"operation", "status"},
	)

	r.ChainStepsPerSave = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chainmap_chain_steps_per_save",
			Help:    "Step count of saved chains",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34},
		},
	)

	r.UptimeSeconds = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "chainmap_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	return r
}

// RecordHTTPRequest records one handled request
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordChainOperation records one chain store operation
func (r *Registry) RecordChainOperation(operation, status string) {
	r.ChainOperationsTotal.WithLabelValues(operation, status).Inc()
}

// Handler returns the exposition handler for GET /metrics
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gather exposes the underlying gatherer (used by tests)
func (r *Registry) Gather() prometheus.Gatherer {
	return r.registry
}
