package events

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/fingerprint"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/tracing"
)

// Publisher ships events to a broker
type Publisher interface {
	PublishEvents(ctx context.Context, events []*Event) error
}

// Emitter is a Sink that publishes pipeline events to a broker
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

func (e *Emitter) Emit(ctx context.Context, event *Event) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.Emit")
	defer span.End()

	if err := e.publisher.PublishEvents(ctx, []*Event{event}); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s event", event.EventType)
		return err
	}
	return nil
}

// EmitListings publishes one listing.cleaned event per listing, keyed by the listing fingerprint
func (e *Emitter) EmitListings(ctx context.Context, runID string, listings []*models.Listing) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitListings")
	defer span.End()

	if len(listings) == 0 {
		return nil
	}

	batch := make([]*Event, len(listings))
	for i, l := range listings {
		event := NewEvent(EventTypeListingCleaned, runID)
		event.Listing = l
		event.Key = fingerprint.Listing(l)
		batch[i] = event
	}

	if err := e.publisher.PublishEvents(ctx, batch); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"batch_size": len(batch),
		}).Error("Failed to emit listing events")
		return err
	}
	return nil
}
