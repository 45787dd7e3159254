// Package metrics exposes Prometheus counters for the API server, the
// renderer and the editor. All metrics register against the default registry
// and are served by Handler.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's collectors.
type Metrics struct {
	HTTPRequestTotal    *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RenderTotal    *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec

	EditorCommandTotal *prometheus.CounterVec
	EditorSessionsOpen prometheus.Gauge

	RevisionSaveTotal *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	metricsMu     sync.Mutex
)

// New returns the process-wide metrics, creating and registering them on
// first call.
func New() *Metrics {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	if globalMetrics != nil {
		return globalMetrics
	}

	m := &Metrics{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "designer_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "designer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),

		RenderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "designer_renders_total",
			Help: "Total number of page renders",
		}, []string{"device", "status"}),

		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "designer_render_duration_seconds",
			Help:    "Page render duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"device", "status"}),

		EditorCommandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "designer_editor_commands_total",
			Help: "Total number of editor commands applied",
		}, []string{"command", "status"}),

		EditorSessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "designer_editor_sessions_open",
			Help: "Number of open editor sessions",
		}),

		RevisionSaveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "designer_revision_saves_total",
			Help: "Total number of revision saves",
		}, []string{"status"}),
	}

	registerOrGet(m.HTTPRequestTotal)
	registerOrGet(m.HTTPRequestDuration)
	registerOrGet(m.RenderTotal)
	registerOrGet(m.RenderDuration)
	registerOrGet(m.EditorCommandTotal)
	registerOrGet(m.EditorSessionsOpen)
	registerOrGet(m.RevisionSaveTotal)

	globalMetrics = m
	return m
}

// registerOrGet registers a collector, keeping the existing one when it is
// already registered.
func registerOrGet(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
	}
	return c
}

// Handler serves the default registry, for mounting at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency per route pattern. It uses the
// chi route pattern rather than the raw path so IDs do not explode the label
// cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := strconv.Itoa(ww.Status())
		m.HTTPRequestTotal.WithLabelValues(r.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

// ObserveRender records one page render.
func (m *Metrics) ObserveRender(device string, err error, took time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RenderTotal.WithLabelValues(device, status).Inc()
	m.RenderDuration.WithLabelValues(device, status).Observe(took.Seconds())
}
