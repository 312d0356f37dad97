package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/config"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ResultProducer publishes mined-publication events to the results topic.
type ResultProducer struct {
	writer writerInterface
	topic  string
	logger logging.Logger
	closed atomic.Bool
}

// NewResultProducer builds a producer over the configured brokers.
func NewResultProducer(cfg config.KafkaConfig, logger logging.Logger) *ResultProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.ResultsTopic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerRetries,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	return &ResultProducer{writer: writer, topic: cfg.ResultsTopic, logger: logger}
}

// PublishResult publishes one mined publication, keyed by publication ID so
// per-publication ordering is preserved.
func (p *ResultProducer) PublishResult(ctx context.Context, result *toolmining.PublicationResult) error {
	if p.closed.Load() {
		return errors.New(errors.ErrCodeMessagingError, "producer is closed")
	}
	if result == nil {
		return errors.Validation("mined_result", "must not be nil")
	}

	envelope, err := NewEnvelope(EventTypePublicationMined, "toolminer", PublicationMinedPayload{
		Result:  result,
		MinedAt: time.Now().UTC(),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "building result envelope")
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "serialising result envelope")
	}

	msg := kafka.Message{
		Key:   []byte(result.PublicationID),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeMessagingError, "publishing mined result")
	}

	p.logger.Debug("published mined result",
		logging.String("topic", p.topic),
		logging.String("publication_id", string(result.PublicationID)),
	)
	return nil
}

// Close flushes and shuts down the writer.
func (p *ResultProducer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
