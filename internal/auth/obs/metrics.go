// Package obs holds the Prometheus collectors of the auth service.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a set of collectors bound to its own registry.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	logins      *prometheus.CounterVec
	refreshes   *prometheus.CounterVec
	sessions    *prometheus.CounterVec
	gateDenials *prometheus.CounterVec
}

// New registers every collector, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_refresh_total",
			Help: "Refresh attempts by outcome.",
		}, []string{"outcome"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_session_total",
			Help: "Protected request resolutions by outcome.",
		}, []string{"outcome"}),
		gateDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_permission_denied_total",
			Help: "Requests denied by the permission gate.",
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight, m.httpRequestsTotal, m.httpRequestDuration,
		m.logins, m.refreshes, m.sessions, m.gateDenials,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Login records a login outcome: "success" or a failure reason.
func (m *Metrics) Login(outcome string) { m.logins.WithLabelValues(outcome).Inc() }

// Refresh records a refresh outcome.
func (m *Metrics) Refresh(outcome string) { m.refreshes.WithLabelValues(outcome).Inc() }

// Session records how a protected request resolved.
func (m *Metrics) Session(outcome string) { m.sessions.WithLabelValues(outcome).Inc() }

// Denied records a permission gate denial.
func (m *Metrics) Denied(route string) { m.gateDenials.WithLabelValues(route).Inc() }

// Instrument measures request count, latency and in-flight requests.
// Routes are labelled by their ServeMux pattern to keep cardinality
// bounded.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(sw.code)
		m.httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.code = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
