// Package metrics holds the Prometheus collectors of the tracking pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Completion outcomes.
const (
	OutcomeCompleted        = "completed"
	OutcomeAlreadyCompleted = "already_completed"
	OutcomeEphemeralFailure = "ephemeral_failure"
	OutcomeDurableFailure   = "durable_failure"
	OutcomeRejected         = "rejected"
)

var (
	// CompletionsTotal counts completeRide invocations by outcome.
	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ride_completions_total",
			Help: "Ride completion attempts by outcome",
		},
		[]string{"outcome"},
	)

	// CompletionDuration observes end-to-end completion latency.
	CompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ride_completion_duration_seconds",
			Help:    "Duration of the ride completion protocol in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SamplesFlushed counts tracking points newly written at completion.
	SamplesFlushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ride_samples_flushed_total",
			Help: "Location samples persisted as tracking points",
		},
	)

	// SamplesIngested counts samples accepted into the ephemeral store.
	SamplesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ride_samples_ingested_total",
			Help: "Location samples accepted into the ephemeral store",
		},
	)

	// NotificationFailures counts failed notification sends by event type.
	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ride_notification_failures_total",
			Help: "Notification sends that failed, by event type",
		},
		[]string{"event_type"},
	)

	// RetryAttempts counts retried I/O calls by operation.
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ride_io_retries_total",
			Help: "Retried store calls by operation",
		},
		[]string{"operation"},
	)

	// PatternsClassified counts movement classifications by type.
	PatternsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ride_movement_patterns_total",
			Help: "Movement pattern classifications by type",
		},
		[]string{"type"},
	)

	// LiveObservers tracks open live-map connections.
	LiveObservers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ride_live_observers",
			Help: "Open live-map websocket connections",
		},
	)
)
