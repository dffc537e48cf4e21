// Package metrics provides Prometheus metrics export for the
// ingestion and search paths.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exports journal pipeline metrics in Prometheus format.
type Exporter struct {
	registry *prometheus.Registry

	// Ingestion metrics
	ingestRequests *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec
	sideEffectErrs *prometheus.CounterVec

	// Search metrics
	searchRequests *prometheus.CounterVec
	searchLatency  *prometheus.HistogramVec

	// Embedding provider metrics
	embedLatency *prometheus.HistogramVec

	// Backfill metrics
	backfillIndexed prometheus.Counter
	backfillErrors  prometheus.Counter
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default exporter configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}
}

// NewExporter creates a new metrics exporter.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.ingestRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lifelog",
			Subsystem: "journal",
			Name:      "ingest_requests_total",
			Help:      "Total number of entry ingestions",
		},
		[]string{"status"},
	)

	e.ingestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lifelog",
			Subsystem: "journal",
			Name:      "ingest_latency_seconds",
			Help:      "Entry ingestion latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"status"},
	)

	e.sideEffectErrs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lifelog",
			Subsystem: "journal",
			Name:      "side_effect_errors_total",
			Help:      "Non-fatal ingestion side effect failures",
		},
		[]string{"effect"},
	)

	e.searchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lifelog",
			Subsystem: "journal",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"mode"},
	)

	e.searchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lifelog",
			Subsystem: "journal",
			Name:      "search_latency_seconds",
			Help:      "Search request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"mode"},
	)

	e.embedLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lifelog",
			Subsystem: "ai",
			Name:      "embedding_latency_seconds",
			Help:      "Embedding provider call latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"model", "status"},
	)

	e.backfillIndexed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lifelog",
			Subsystem: "journal",
			Name:      "backfill_indexed_total",
			Help:      "Entries indexed by the embedding backfill loop",
		},
	)

	e.backfillErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lifelog",
			Subsystem: "journal",
			Name:      "backfill_errors_total",
			Help:      "Errors encountered by the embedding backfill loop",
		},
	)

	registry.MustRegister(
		e.ingestRequests,
		e.ingestLatency,
		e.sideEffectErrs,
		e.searchRequests,
		e.searchLatency,
		e.embedLatency,
		e.backfillIndexed,
		e.backfillErrors,
	)

	return e
}

// RecordIngest records one ingestion. Status is "success", "degraded"
// (persisted with warnings) or "error".
func (e *Exporter) RecordIngest(status string, latency time.Duration) {
	e.ingestRequests.WithLabelValues(status).Inc()
	e.ingestLatency.WithLabelValues(status).Observe(latency.Seconds())
}

// RecordSideEffectError records a non-fatal side effect failure.
// Effect is "embedding", "streak", "analytics" or "summary".
func (e *Exporter) RecordSideEffectError(effect string) {
	e.sideEffectErrs.WithLabelValues(effect).Inc()
}

// RecordSearch records one search request. Mode is "semantic",
// "listing" or "fallback".
func (e *Exporter) RecordSearch(mode string, latency time.Duration) {
	e.searchRequests.WithLabelValues(mode).Inc()
	e.searchLatency.WithLabelValues(mode).Observe(latency.Seconds())
}

// RecordEmbedding records an embedding provider call.
func (e *Exporter) RecordEmbedding(model string, latency time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	e.embedLatency.WithLabelValues(model, status).Observe(latency.Seconds())
}

// RecordBackfill records one backfill pass outcome.
func (e *Exporter) RecordBackfill(indexed int, errs int) {
	e.backfillIndexed.Add(float64(indexed))
	e.backfillErrors.Add(float64(errs))
}

// GetHandler returns the HTTP handler for Prometheus metrics.
func (e *Exporter) GetHandler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// GetRegistry returns the Prometheus registry.
func (e *Exporter) GetRegistry() *prometheus.Registry {
	return e.registry
}
