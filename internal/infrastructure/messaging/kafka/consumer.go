package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/config"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	commontypes "github.com/curately/ResearchTools-Intelligence/pkg/types/common"
)

// readerInterface abstracts kafka.Reader for testing.
type readerInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// SectionStorage is the object-store contract the consumer uses: it archives
// inline section text for replay and resolves StoredSections references.
// The minio section store satisfies it; nil disables both behaviors.
type SectionStorage interface {
	PutSection(ctx context.Context, id commontypes.PublicationID, section mention.Section, text string) error
	GetSection(ctx context.Context, id commontypes.PublicationID, section mention.Section) (string, error)
}

// IngestConsumer reads publication-ingested events, runs the mining pipeline
// on each, and forwards the result to the producer.
type IngestConsumer struct {
	reader   readerInterface
	service  toolmining.MiningService
	producer *ResultProducer
	storage  SectionStorage
	logger   logging.Logger
}

// NewIngestConsumer builds a consumer group member over the ingest topic.
// producer and storage may each be nil.
func NewIngestConsumer(
	cfg config.KafkaConfig,
	service toolmining.MiningService,
	producer *ResultProducer,
	storage SectionStorage,
	logger logging.Logger,
) *IngestConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.IngestTopic,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		CommitInterval: cfg.CommitInterval,
	})
	return &IngestConsumer{reader: reader, service: service, producer: producer, storage: storage, logger: logger}
}

// Run consumes until ctx is cancelled.  A message that cannot be parsed or
// mined is logged and committed; the batch must keep moving, and the record
// stays on the topic's log for replay if needed.
func (c *IngestConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("commit failed", logging.Err(err))
		}
	}
}

func (c *IngestConsumer) handle(ctx context.Context, msg kafka.Message) {
	var envelope EventEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		c.logger.Warn("skipping malformed envelope",
			logging.Int64("offset", msg.Offset),
			logging.Err(err),
		)
		return
	}
	if envelope.EventType != EventTypePublicationIngested {
		c.logger.Debug("skipping event of other type", logging.String("event_type", envelope.EventType))
		return
	}

	var payload PublicationIngestedPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		c.logger.Warn("skipping malformed payload",
			logging.String("event_id", envelope.EventID),
			logging.Err(err),
		)
		return
	}

	sections := normalizeSections(payload.Sections)

	if c.storage != nil {
		// Archive inline text before mining so a failed run can be replayed
		// from storage.  Archive failures never block the pipeline.
		for section, text := range sections {
			if err := c.storage.PutSection(ctx, payload.PublicationID, section, text); err != nil {
				c.logger.Warn("section archive failed",
					logging.String("publication_id", string(payload.PublicationID)),
					logging.String("section", string(section)),
					logging.Err(err),
				)
			}
		}

		// Resolve object-store references.  A section that cannot be fetched
		// is skipped, the same degradation as a missing section.
		for _, section := range payload.StoredSections {
			if _, inline := sections[section]; inline {
				continue
			}
			switch section {
			case mention.SectionAbstract, mention.SectionMethods, mention.SectionIntroduction:
			default:
				continue
			}
			text, err := c.storage.GetSection(ctx, payload.PublicationID, section)
			if err != nil {
				c.logger.Warn("stored section fetch failed",
					logging.String("publication_id", string(payload.PublicationID)),
					logging.String("section", string(section)),
					logging.Err(err),
				)
				continue
			}
			sections[section] = text
		}
	}

	result, err := c.service.MinePublication(ctx, &toolmining.MiningRequest{
		PublicationID: payload.PublicationID,
		Title:         payload.Title,
		Sections:      sections,
		Categories:    payload.Categories,
	})
	if err != nil {
		c.logger.Error("mining failed",
			logging.String("publication_id", string(payload.PublicationID)),
			logging.Err(err),
		)
		return
	}

	if c.producer != nil {
		if err := c.producer.PublishResult(ctx, result); err != nil {
			c.logger.Error("publishing result failed",
				logging.String("publication_id", string(payload.PublicationID)),
				logging.Err(err),
			)
		}
	}
}

// normalizeSections drops unknown section names so upstream feeds with extra
// sections do not fail validation.
func normalizeSections(in map[mention.Section]string) map[mention.Section]string {
	out := make(map[mention.Section]string, len(in))
	for name, text := range in {
		switch name {
		case mention.SectionAbstract, mention.SectionMethods, mention.SectionIntroduction:
			out[name] = text
		}
	}
	return out
}

// Close shuts down the underlying reader.
func (c *IngestConsumer) Close() error { return c.reader.Close() }
