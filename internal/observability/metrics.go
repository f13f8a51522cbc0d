package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the assistant's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	fallbacksTotal  prometheus.Counter
	recommendations *prometheus.CounterVec
	fitScore        prometheus.Histogram
	cacheTotal      *prometheus.CounterVec

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "job_assistant",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Completed pipeline runs by tailoring strategy.",
		}, []string{"strategy"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "job_assistant",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Pipeline run duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		fallbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "job_assistant",
			Subsystem: "tailoring",
			Name:      "ai_fallbacks_total",
			Help:      "Runs where AI tailoring failed and the heuristic plan was used.",
		}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "job_assistant",
			Subsystem: "fit",
			Name:      "recommendations_total",
			Help:      "Fit recommendations issued.",
		}, []string{"recommendation"}),
		fitScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "job_assistant",
			Subsystem: "fit",
			Name:      "score",
			Help:      "Distribution of fit scores.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "job_assistant",
			Subsystem: "pipeline",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome.",
		}, []string{"outcome"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "job_assistant",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "job_assistant",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		requestInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "job_assistant",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
		}),
	}

	registry.MustRegister(
		m.runsTotal,
		m.runDuration,
		m.fallbacksTotal,
		m.recommendations,
		m.fitScore,
		m.cacheTotal,
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRun records one finished pipeline run.
func (m *Metrics) RecordRun(strategy, recommendation string, score float64, fallback bool, d time.Duration) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "unknown"
	}
	m.runsTotal.WithLabelValues(strategy).Inc()
	m.runDuration.WithLabelValues(strategy).Observe(d.Seconds())
	m.recommendations.WithLabelValues(recommendation).Inc()
	m.fitScore.Observe(score)
	if fallback {
		m.fallbacksTotal.Inc()
	}
}

// RecordCache records a cache lookup outcome: "hit", "miss" or "shared".
func (m *Metrics) RecordCache(outcome string) {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues(outcome).Inc()
}

// Middleware counts and times every request passing through next, which should be a ServeMux.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		// Label by mux pattern so file paths and unknown URLs do not create series.
		route := r.Pattern
		if route == "" {
			route = "other"
		}
		m.requestTotal.WithLabelValues(r.Method, route, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Flush passes through to the wrapped writer so streaming handlers keep working.
func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the wrapped writer.
func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
