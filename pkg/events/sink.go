package events

import (
	"context"
	"errors"
	"sync"

	"github.com/Gobusters/ectologger"
)

// Sink receives pipeline events. A failing sink never stops the pipeline;
// callers log the returned error and move on.
type Sink interface {
	Emit(ctx context.Context, event *Event) error
}

// LoggerSink writes every event to a structured logger
type LoggerSink struct {
	logger ectologger.Logger
}

// NewLoggerSink creates a sink that logs events
func NewLoggerSink(logger ectologger.Logger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

func (s *LoggerSink) Emit(ctx context.Context, event *Event) error {
	fields := map[string]any{
		"event_type": event.EventType,
		"run_id":     event.RunID,
	}
	if event.Stage != "" {
		fields["stage"] = event.Stage
	}
	for k, v := range event.Data {
		fields[k] = v
	}

	log := s.logger.WithContext(ctx).WithFields(fields)
	switch event.EventType {
	case EventTypeLoadFailed, EventTypeRowFailed:
		log.Warn(string(event.EventType))
	case EventTypeListingCleaned:
		log.Debug(string(event.EventType))
	default:
		log.Info(string(event.EventType))
	}
	return nil
}

// MultiSink fans an event out to several sinks
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, event *Event) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every emitted event in memory
type Recorder struct {
	mu     sync.Mutex
	events []*Event
}

func (r *Recorder) Emit(_ context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Event(nil), r.events...)
}

// OfType returns the recorded events of one type
func (r *Recorder) OfType(eventType EventType) []*Event {
	var matched []*Event
	for _, e := range r.Events() {
		if e.EventType == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}
