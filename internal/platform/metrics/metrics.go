package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the trailer addon.
type Metrics struct {
	registry             *prometheus.Registry
	requestsTotal        prometheus.Counter
	errorsTotal          prometheus.Counter
	backendFailuresTotal prometheus.Counter
	streamsResolvedTotal prometheus.Counter
	fallbacksServedTotal prometheus.Counter
	inflightResolutions  prometheus.Gauge
}

// New creates and registers Prometheus metrics for the addon.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trailer_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trailer_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	backendFailuresTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trailer_backend_failures_total",
		Help: "Total number of stream backend calls that errored, timed out, or returned non-success",
	})
	streamsResolvedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trailer_streams_resolved_total",
		Help: "Total number of stream candidates returned to clients",
	})
	fallbacksServedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trailer_fallbacks_served_total",
		Help: "Total number of responses that fell back to the synthetic web-player stream",
	})
	inflightResolutions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trailer_inflight_resolutions",
		Help: "Number of stream resolutions currently in flight",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		backendFailuresTotal,
		streamsResolvedTotal,
		fallbacksServedTotal,
		inflightResolutions,
	)

	return &Metrics{
		registry:             registry,
		requestsTotal:        requestsTotal,
		errorsTotal:          errorsTotal,
		backendFailuresTotal: backendFailuresTotal,
		streamsResolvedTotal: streamsResolvedTotal,
		fallbacksServedTotal: fallbacksServedTotal,
		inflightResolutions:  inflightResolutions,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncBackendFailures increments the backend failure counter.
func (m *Metrics) IncBackendFailures() {
	m.backendFailuresTotal.Inc()
}

// AddStreamsResolved adds n to the resolved stream counter.
func (m *Metrics) AddStreamsResolved(n int) {
	m.streamsResolvedTotal.Add(float64(n))
}

// IncFallbacksServed increments the synthetic fallback counter.
func (m *Metrics) IncFallbacksServed() {
	m.fallbacksServedTotal.Inc()
}

// ResolutionStarted increments the in-flight resolution gauge.
func (m *Metrics) ResolutionStarted() {
	m.inflightResolutions.Inc()
}

// ResolutionFinished decrements the in-flight resolution gauge.
func (m *Metrics) ResolutionFinished() {
	m.inflightResolutions.Dec()
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
