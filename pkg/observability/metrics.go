package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics (ratchetd)
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Generation metrics
	GenerationsTotal      *prometheus.CounterVec
	GenerationDuration    *prometheus.HistogramVec
	ShapesProcessed       *prometheus.CounterVec
	SyntheticShapesTotal  prometheus.Counter
	GenerationErrorsTotal *prometheus.CounterVec

	// Artifact cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratchet_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ratchet_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratchet_generations_total",
				Help: "Total number of generation runs",
			},
			[]string{"source", "outcome"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ratchet_generation_duration_seconds",
				Help:    "Generation run duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"source"},
		),
		ShapesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratchet_shapes_processed_total",
				Help: "Shapes handled per generation run, by kind",
			},
			[]string{"kind"},
		),
		SyntheticShapesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ratchet_synthetic_shapes_total",
				Help: "Synthetic shapes introduced by normalization",
			},
		),
		GenerationErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratchet_generation_errors_total",
				Help: "Fatal generation errors, by stage",
			},
			[]string{"stage"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ratchet_artifact_cache_hits_total",
				Help: "Artifact cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ratchet_artifact_cache_misses_total",
				Help: "Artifact cache misses",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GenerationsTotal,
		m.GenerationDuration,
		m.ShapesProcessed,
		m.SyntheticShapesTotal,
		m.GenerationErrorsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)
	return m
}

// Handler returns the Prometheus scrape handler for the registry
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ObserveGeneration records a completed generation run
func (m *Metrics) ObserveGeneration(source string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.GenerationsTotal.WithLabelValues(source, outcome).Inc()
	m.GenerationDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// InstrumentHandler wraps an HTTP handler with request metrics
func (m *Metrics) InstrumentHandler(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

// WriteHeader records the status code
func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
