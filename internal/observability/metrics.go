package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	geoResolutions  *prometheus.CounterVec
	overdue         prometheus.Gauge
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP requests that ended in a domain error",
		}, []string{"method", "route", "code"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_transitions_total",
			Help: "Ticket workflow actions applied",
		}, []string{"action"}),
		geoResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geo_resolutions_total",
			Help: "Ward resolutions by outcome",
		}, []string{"outcome"}),
		overdue: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tickets_overdue",
			Help: "Open tickets past their SLA deadline at the last monitor run",
		}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, route, code).Inc()
}

// RecordTransition counts an applied workflow action.
func (m *Metrics) RecordTransition(action string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action).Inc()
}

// RecordGeoResolution counts a ward lookup outcome.
func (m *Metrics) RecordGeoResolution(resolved bool) {
	if m == nil {
		return
	}
	outcome := "unresolved"
	if resolved {
		outcome = "resolved"
	}
	m.geoResolutions.WithLabelValues(outcome).Inc()
}

// SetOverdue publishes the latest overdue count.
func (m *Metrics) SetOverdue(count int) {
	if m == nil {
		return
	}
	m.overdue.Set(float64(count))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying registry for tests and custom exporters.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
