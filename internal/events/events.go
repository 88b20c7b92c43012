package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Signal types emitted by a deck session.
const (
	TypeCardCompleted    = "session.card_completed"
	TypeCardSkipped      = "session.card_skipped"
	TypeDeckReshuffled   = "session.deck_reshuffled"
	TypeAtCapacity       = "session.at_capacity"
	TypePaywallOpened    = "session.paywall_opened"
	TypePaywallDismissed = "session.paywall_dismissed"
)

// Event is a single signal. Seq is assigned when the event is emitted.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Seq orders events within a Feed
	Seq uint64 `json:"seq,omitempty"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload contains signal-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the specified type and payload.
// A nil payload leaves Payload empty.
func NewEvent(eventType string, payload interface{}, now time.Time) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   raw,
		CreatedAt: now,
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows the session to publish signals without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
