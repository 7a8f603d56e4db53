// Package metrics provides Prometheus metrics for lily.
package metrics

import (
	"context"
	"strconv"

	"github.com/Ramsey-B/lily/pkg/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelineRunsTotal tracks pipeline runs by status
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lily",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		},
		[]string{"status"},
	)

	// PipelineRunDuration tracks pipeline run duration in seconds
	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lily",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// StageRowsTotal tracks rows leaving each pipeline stage
	StageRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lily",
			Subsystem: "pipeline",
			Name:      "stage_rows_total",
			Help:      "Total number of rows leaving each pipeline stage",
		},
		[]string{"stage"},
	)

	// RowFailuresTotal tracks canonicalizer failures isolated to one row
	RowFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lily",
			Subsystem: "pipeline",
			Name:      "row_failures_total",
			Help:      "Total number of per-row canonicalization failures by field",
		},
		[]string{"field"},
	)

	// DuplicatesRemovedTotal tracks removed duplicates by kind (exact, fuzzy)
	DuplicatesRemovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lily",
			Subsystem: "dedup",
			Name:      "removed_total",
			Help:      "Total number of duplicate listings removed by kind",
		},
		[]string{"kind"},
	)

	// LoadFailuresTotal tracks input files that could not be loaded
	LoadFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lily",
			Subsystem: "pipeline",
			Name:      "load_failures_total",
			Help:      "Total number of input files that could not be loaded",
		},
	)

	// HTTPRequestsTotal tracks API requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lily",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks API request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lily",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "route"},
	)

	// CacheLookupsTotal tracks stats cache lookups by result (hit, miss, error)
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lily",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of cache lookups by result",
		},
		[]string{"result"},
	)

	// KafkaMessagesTotal tracks event messages handed to the broker by result (published, failed)
	KafkaMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lily",
			Subsystem: "kafka",
			Name:      "messages_total",
			Help:      "Total number of event messages written to Kafka by result",
		},
		[]string{"result"},
	)
)

// RecordHTTPRequest records an API request
func RecordHTTPRequest(method, route string, statusCode int, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordCacheLookup records a cache lookup result
func RecordCacheLookup(result string) {
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordKafkaMessages records n messages written with the given result
func RecordKafkaMessages(result string, n int) {
	KafkaMessagesTotal.WithLabelValues(result).Add(float64(n))
}

// Sink turns pipeline events into metric updates
type Sink struct{}

// NewSink creates a metrics sink
func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Emit(_ context.Context, event *events.Event) error {
	switch event.EventType {
	case events.EventTypeStageCompleted:
		if rows, ok := event.Data["rows"].(int); ok {
			StageRowsTotal.WithLabelValues(event.Stage).Add(float64(rows))
		}
		if n, ok := event.Data["exact_removed"].(int); ok {
			DuplicatesRemovedTotal.WithLabelValues("exact").Add(float64(n))
		}
		if n, ok := event.Data["fuzzy_removed"].(int); ok {
			DuplicatesRemovedTotal.WithLabelValues("fuzzy").Add(float64(n))
		}
	case events.EventTypeRowFailed:
		field, _ := event.Data["field"].(string)
		RowFailuresTotal.WithLabelValues(field).Inc()
	case events.EventTypeLoadFailed:
		LoadFailuresTotal.Inc()
	case events.EventTypePipelineCompleted:
		PipelineRunsTotal.WithLabelValues("completed").Inc()
		if d, ok := event.Data["duration_seconds"].(float64); ok {
			PipelineRunDuration.Observe(d)
		}
	}
	return nil
}
