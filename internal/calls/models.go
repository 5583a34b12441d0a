package calls

import "time"

// Session is the single tracked call.
//
// NOTE: Exactly one session exists at a time. A new placement overwrites the
// previous one (last writer wins); there is no queue.
type Session struct {
	CallID string `json:"call_id"`
	To     string `json:"to"`

	Status CallStatus `json:"status"`
	State  State      `json:"state"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CallStatus string

const (
	CallStatusInitiated CallStatus = "initiated"
	CallStatusRinging   CallStatus = "ringing"
	CallStatusAnswered  CallStatus = "answered"
	CallStatusCompleted CallStatus = "completed"
	CallStatusFailed    CallStatus = "failed"
)

// State is the orchestration state of the tracked call.
type State string

const (
	StateNoActiveCall   State = "no_active_call"
	StateConnecting     State = "connecting"
	StateConnected      State = "connected"
	StateMessagePlaying State = "message_playing"
	StateCompleted      State = "completed"
)

// statusFromTwilio maps a provider CallStatus onto the session status enum.
// ok is false for statuses that carry no information for the session.
func statusFromTwilio(s string) (CallStatus, bool) {
	switch s {
	case "queued", "initiated":
		return CallStatusInitiated, true
	case "ringing":
		return CallStatusRinging, true
	case "in-progress", "answered":
		return CallStatusAnswered, true
	case "completed":
		return CallStatusCompleted, true
	case "busy", "failed", "no-answer", "canceled":
		return CallStatusFailed, true
	default:
		return "", false
	}
}
