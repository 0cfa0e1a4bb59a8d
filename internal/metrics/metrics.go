// Package metrics holds the Prometheus collectors of the server and worker.
// All collectors register with the default registry at init.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cinemate"

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Recommendation pipeline
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_generated_total",
			Help:      "Total number of generated recommendation sets",
		},
		[]string{"domain"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_generation_duration_seconds",
			Help:      "Duration of a generate request including explanations",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"domain"},
	)

	GateRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_gate_rejections_total",
			Help:      "Total number of preference sets rejected by the validation gate",
		},
		[]string{"domain", "code"},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total number of interaction log exports",
		},
		[]string{"result"},
	)

	EventPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Total number of events that could not be published",
		},
	)

	// Sessions
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions held by the in-memory store",
		},
	)

	// Worker
	WorkerEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_events_total",
			Help:      "Total number of events consumed by the worker",
		},
		[]string{"type", "result"},
	)

	DLQPurgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dlq_purged_total",
			Help:      "Total number of dead-lettered events removed",
		},
	)
)

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordGeneration records a successful generation
func RecordGeneration(domain string, duration time.Duration) {
	GenerationsTotal.WithLabelValues(domain).Inc()
	GenerationDuration.WithLabelValues(domain).Observe(duration.Seconds())
}

// RecordGateRejection records a preference set the gate refused
func RecordGateRejection(domain, code string) {
	GateRejectionsTotal.WithLabelValues(domain, code).Inc()
}

// RecordExport records an export attempt
func RecordExport(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ExportsTotal.WithLabelValues(result).Inc()
}

// RecordWorkerEvent records one consumed event
func RecordWorkerEvent(eventType string, err error) {
	result := "processed"
	if err != nil {
		result = "rejected"
	}
	WorkerEventsTotal.WithLabelValues(eventType, result).Inc()
}
