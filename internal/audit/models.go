package audit

import "time"

// Event is an immutable, append-only record of a call lifecycle step.
//
// Invariants:
// - Events are never updated or deleted by callers; the memory repo only evicts the oldest.
// - Recording is best-effort; do not block call flows on audit failures.
type Event struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`

	CallID string `json:"call_id,omitempty"`
	To     string `json:"to,omitempty"`
	Status string `json:"status,omitempty"`

	// Message is a short human-readable description for the operator.
	Message string `json:"message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type EventType string

const (
	EventTypeCallPlaced       EventType = "call_placed"
	EventTypeCallFailed       EventType = "call_failed"
	EventTypeCallConnected    EventType = "call_connected"
	EventTypeMessageTriggered EventType = "message_triggered"
	EventTypeStatusChanged    EventType = "status_changed"
	EventTypeCallCleared      EventType = "call_cleared"
)
