package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/events"
	"github.com/Ramsey-B/lily/pkg/metrics"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w writer) *Producer {
	return &Producer{w: w, topic: "lily.events", logger: newTestLogger()}
}

func newTestLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestCodec(t *testing.T) {
	assert.Equal(t, compress.Gzip, codec("gzip"))
	assert.Equal(t, compress.Zstd, codec("zstd"))
	assert.Equal(t, compress.None, codec("none"))
	assert.Equal(t, compress.Snappy, codec(""))
}

func TestProducer_PublishEvents(t *testing.T) {
	t.Run("should write one message per event with headers", func(t *testing.T) {
		writer := &fakeWriter{}
		p := newTestProducer(writer)

		started := events.NewEvent(events.EventTypePipelineStarted, "run-1")
		cleaned := events.NewEvent(events.EventTypeListingCleaned, "run-1")
		cleaned.Key = "abc"
		cleaned.Listing = models.NewListing()

		err := p.PublishEvents(context.Background(), []*events.Event{started, cleaned})
		require.NoError(t, err)
		require.Len(t, writer.messages, 2)

		assert.Equal(t, "run-1", string(writer.messages[0].Key))
		assert.Equal(t, "pipeline.started", header(writer.messages[0], "event_type"))
		assert.Equal(t, "abc", string(writer.messages[1].Key))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(writer.messages[1].Value, &decoded))
		assert.Equal(t, "listing.cleaned", decoded["event_type"])
		assert.Contains(t, decoded, "listing")
	})

	t.Run("should skip an empty batch", func(t *testing.T) {
		writer := &fakeWriter{}
		p := newTestProducer(writer)
		assert.NoError(t, p.PublishEvents(context.Background(), nil))
		assert.Empty(t, writer.messages)
	})

	t.Run("should return write errors", func(t *testing.T) {
		failedBefore := testutil.ToFloat64(metrics.KafkaMessagesTotal.WithLabelValues("failed"))
		writer := &fakeWriter{err: errors.New("broker down")}
		p := newTestProducer(writer)
		err := p.PublishEvents(context.Background(), []*events.Event{events.NewEvent(events.EventTypePipelineStarted, "r")})
		assert.EqualError(t, err, "broker down")
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.KafkaMessagesTotal.WithLabelValues("failed"))-failedBefore)
	})

	t.Run("should close the writer", func(t *testing.T) {
		writer := &fakeWriter{}
		p := newTestProducer(writer)
		require.NoError(t, p.Close())
		assert.True(t, writer.closed)
	})
}
