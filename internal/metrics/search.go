package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every pinsearch metric.
const Namespace = "pinsearch"

// Search and ingest Prometheus metrics.
var (
	PinFetchFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pin_fetch_failures_total",
			Help:      "Pinned document lookups that failed and degraded to no pins",
		},
	)

	PinsPlacedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pins_total",
			Help:      "Requested pins by outcome",
		},
		[]string{"outcome"}, // "placed" / "before_page" / "after_page" / "unresolved" / "shadowed"
	)

	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backend_requests_total",
			Help:      "Total number of search backend calls",
		},
		[]string{"backend", "op", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend call duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend", "op"},
	)

	IngestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ingest_documents_total",
			Help:      "Ingested NDJSON records by status",
		},
		[]string{"status"}, // "ok" / "error" / "skipped"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search and ingest metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(PinFetchFailuresTotal)
	prometheus.MustRegister(PinsPlacedTotal)
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(IngestDocumentsTotal)
	searchMetricsRegistered = true
}

// ObserveBackend records one backend call started at start.
func ObserveBackend(backend, op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	BackendRequestsTotal.WithLabelValues(backend, op, status).Inc()
	BackendRequestDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
