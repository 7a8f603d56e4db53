// Package kafka publishes lily pipeline events to a Kafka topic
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/events"
	"github.com/Ramsey-B/lily/pkg/metrics"
	"github.com/Ramsey-B/lily/pkg/tracing"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerConfig describes the broker connection and batching of a Producer
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

var codecs = map[string]compress.Compression{
	"none":   compress.None,
	"gzip":   compress.Gzip,
	"snappy": compress.Snappy,
	"lz4":    compress.Lz4,
	"zstd":   compress.Zstd,
}

// codec resolves a configured compression name, defaulting to snappy
func codec(name string) compress.Compression {
	if c, ok := codecs[name]; ok {
		return c
	}
	return compress.Snappy
}

// Producer writes events keyed by their partition key, so all events for one
// listing land on the same partition
type Producer struct {
	w      writer
	topic  string
	logger ectologger.Logger
}

func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			BatchSize:              cfg.BatchSize,
			BatchTimeout:           cfg.BatchTimeout,
			RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
			Compression:            codec(cfg.Compression),
			AllowAutoTopicCreation: true,
		},
		topic:  cfg.Topic,
		logger: logger,
	}
}

// PublishEvents writes batch in a single call. An empty batch is a no-op.
func (p *Producer) PublishEvents(ctx context.Context, batch []*events.Event) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishEvents")
	defer span.End()

	if len(batch) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(batch))
	for _, e := range batch {
		msg, err := encode(e)
		if err != nil {
			return errors.Wrapf(err, "encode %s event", e.EventType)
		}
		msgs = append(msgs, msg)
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{"topic": p.topic, "count": len(msgs)})
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		metrics.RecordKafkaMessages("failed", len(msgs))
		log.WithError(err).Error("Kafka write failed")
		return err
	}
	metrics.RecordKafkaMessages("published", len(msgs))
	log.Debug("Kafka write complete")
	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}

// encode renders e as JSON with event_type, run_id and schema_version headers.
// A zero timestamp is stamped with the current UTC time.
func encode(e *events.Event) (kafka.Message, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}

	headers := make([]kafka.Header, 0, 3)
	for k, v := range map[string]string{
		"event_type":     string(e.EventType),
		"run_id":         e.RunID,
		"schema_version": e.SchemaVersion,
	} {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	return kafka.Message{Key: []byte(e.PartitionKey()), Value: body, Headers: headers}, nil
}
