// Package observability provides Prometheus metrics and OpenTelemetry tracing
// for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthAttempts counts authentication attempts by operation and outcome.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_auth_attempts_total",
		Help: "Total authentication attempts by operation and outcome",
	}, []string{"operation", "outcome"})

	// PostViews counts view-count increments served for published posts.
	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_post_views_total",
		Help: "Total number of post view increments",
	})

	// TasksEnqueued counts background tasks enqueued by type.
	TasksEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_tasks_enqueued_total",
		Help: "Total background tasks enqueued by type",
	}, []string{"type"})

	// TasksProcessed counts background tasks processed by type and outcome.
	TasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_tasks_processed_total",
		Help: "Total background tasks processed by type and outcome",
	}, []string{"type", "outcome"})

	// TaskQueueDepth is the current length of the background task queue.
	TaskQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inkwell_task_queue_depth",
		Help: "Current number of tasks waiting in the queue",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
