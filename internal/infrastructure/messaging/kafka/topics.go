// Package kafka carries publications into the mining pipeline and mined
// results out of it.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/mention"
	commontypes "github.com/curately/ResearchTools-Intelligence/pkg/types/common"
)

// Default topic names; deployments override them in configuration.
const (
	TopicPublicationsIngest = "publications.ingest"
	TopicToolsMined         = "tools.mined"
)

// Event types carried on the envelope.
const (
	EventTypePublicationIngested = "publication.ingested"
	EventTypePublicationMined    = "publication.mined"
)

// EventEnvelope standardises messages on both topics.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// PublicationIngestedPayload is the inbound message: one publication's
// sections ready for mining.  A section arrives either inline in Sections or
// named in StoredSections, in which case the worker loads its text from the
// section store under the publication's key.  Inline text wins when a
// section appears in both.
type PublicationIngestedPayload struct {
	PublicationID  commontypes.PublicationID  `json:"publication_id"`
	Title          string                     `json:"title,omitempty"`
	Sections       map[mention.Section]string `json:"sections,omitempty"`
	StoredSections []mention.Section          `json:"stored_sections,omitempty"`
	Categories     []mention.ToolCategory     `json:"categories,omitempty"`
}

// PublicationMinedPayload is the outbound message: the partitioned result
// for one publication.
type PublicationMinedPayload struct {
	Result  *toolmining.PublicationResult `json:"result"`
	MinedAt time.Time                     `json:"mined_at"`
}

// NewEnvelope wraps a payload for publication.
func NewEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "1.0",
		Payload:       data,
	}, nil
}
