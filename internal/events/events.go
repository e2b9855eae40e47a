package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the review service.
const (
	// TypeReviewRecorded is emitted after a graded review is committed.
	TypeReviewRecorded = "review.recorded"

	// TypeFamiliarityChanged is emitted after a manual familiarity mark is committed.
	TypeFamiliarityChanged = "familiarity.changed"
)

// NotebookEvent describes a committed change to a learner's notebook.
type NotebookEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// UserID identifies the learner whose notebook changed
	UserID uuid.UUID `json:"user_id"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the change was committed
	CreatedAt time.Time `json:"created_at"`
}

// ReviewRecorded is the payload of TypeReviewRecorded.
type ReviewRecorded struct {
	UserCharacterID uuid.UUID `json:"user_character_id"`
	CharacterID     string    `json:"character_id"`
	Grade           int       `json:"grade"`
	State           string    `json:"state"`
	IntervalDays    float64   `json:"interval_days"`
	NextReview      time.Time `json:"next_review"`
}

// FamiliarityChanged is the payload of TypeFamiliarityChanged.
type FamiliarityChanged struct {
	Characters  []string `json:"characters"`
	Familiarity int      `json:"familiarity"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *NotebookEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewNotebookEvent creates an event of the given type for a learner.
func NewNotebookEvent(
	eventType string,
	userID uuid.UUID,
	payload interface{},
	createdAt time.Time,
) (*NotebookEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &NotebookEvent{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: createdAt,
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *NotebookEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *NotebookEvent) error
}
