package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope wrapped around every message this service publishes.
// The payload is marshalled up front so the envelope stays payload-agnostic;
// this service only produces, so there is no unwrap side here.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EntityID      string          `json:"entity_id"`
	EntityType    string          `json:"entity_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEvent wraps payload in a fresh envelope. correlationID ties the event
// back to the HTTP request that caused it and may be empty for events with
// no request origin.
func NewEvent(eventType, entityID, entityType, source, correlationID string, payload any) (*Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return &Event{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		EntityID:      entityID,
		EntityType:    entityType,
		OccurredAt:    time.Now().UTC(),
		Source:        source,
		CorrelationID: correlationID,
		Payload:       body,
	}, nil
}
