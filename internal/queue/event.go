package queue

import (
	"time"

	"github.com/benvon/cinemate/internal/models"
	"github.com/google/uuid"
)

// EventType classifies bus events
type EventType string

const (
	// EventTypeSessionStarted is published when a session is initialized
	EventTypeSessionStarted EventType = "session_started"
	// EventTypeInteraction carries one interaction log entry
	EventTypeInteraction EventType = "interaction_recorded"
	// EventTypeSessionEnded is published on explicit teardown
	EventTypeSessionEnded EventType = "session_ended"
)

// Event is the bus representation of a session milestone
type Event struct {
	ID         uuid.UUID     `json:"id"`
	Type       EventType     `json:"type"`
	SessionID  string        `json:"session_id"`
	Domain     string        `json:"domain"`
	Action     models.Action `json:"action,omitempty"`
	Message    string        `json:"message,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func newEvent(t EventType, sessionID, domain string, at time.Time) *Event {
	return &Event{
		ID:         uuid.New(),
		Type:       t,
		SessionID:  sessionID,
		Domain:     domain,
		OccurredAt: at,
	}
}

// NewInteractionEvent wraps a recorded interaction
func NewInteractionEvent(sessionID, domain string, e models.InteractionEvent) *Event {
	ev := newEvent(EventTypeInteraction, sessionID, domain, e.Timestamp)
	ev.Action = e.Action
	ev.Message = e.Message
	return ev
}

// NewSessionEvent creates a session_started or session_ended event
func NewSessionEvent(t EventType, sessionID, domain string, at time.Time) *Event {
	return newEvent(t, sessionID, domain, at)
}
