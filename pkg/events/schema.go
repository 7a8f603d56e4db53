// Package events carries pipeline observability events to pluggable sinks
package events

import (
	"time"

	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/google/uuid"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// EventType defines the type of event
type EventType string

const (
	// Run lifecycle
	EventTypePipelineStarted   EventType = "pipeline.started"
	EventTypePipelineCompleted EventType = "pipeline.completed"
	EventTypeStageCompleted    EventType = "stage.completed"

	// Degradations
	EventTypeLoadFailed EventType = "load.failed"
	EventTypeRowFailed  EventType = "row.failed"

	// Output
	EventTypeListingCleaned EventType = "listing.cleaned"
)

// Event is a structured record of something the pipeline did
type Event struct {
	ID            string          `json:"id"`
	EventType     EventType       `json:"event_type"`
	SchemaVersion string          `json:"schema_version"`
	RunID         string          `json:"run_id"`
	Stage         string          `json:"stage,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Data          map[string]any  `json:"data,omitempty"`
	Listing       *models.Listing `json:"listing,omitempty"`

	// Key partitions the event when published; defaults to the run ID
	Key string `json:"-"`
}

// NewEvent creates an event stamped with a fresh ID and the current time
func NewEvent(eventType EventType, runID string) *Event {
	return &Event{
		ID:            uuid.NewString(),
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		RunID:         runID,
		Timestamp:     time.Now().UTC(),
		Data:          map[string]any{},
	}
}

// WithStage sets the pipeline stage
func (e *Event) WithStage(stage string) *Event {
	e.Stage = stage
	return e
}

// WithData adds a data field
func (e *Event) WithData(key string, value any) *Event {
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	e.Data[key] = value
	return e
}

// PartitionKey returns the key the event is published under
func (e *Event) PartitionKey() string {
	if e.Key != "" {
		return e.Key
	}
	return e.RunID
}
