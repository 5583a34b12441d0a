package calls

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTarget is returned for an empty destination; no backend request is made.
	ErrInvalidTarget = errors.New("calls: target number required")

	// ErrNoActiveCall is returned when an operation needs a call in progress.
	ErrNoActiveCall = errors.New("calls: no active call")
)

// InitiationError reports that the backend could not place a call after retries.
type InitiationError struct {
	To       string
	Attempts int
	Err      error
}

func (e *InitiationError) Error() string {
	return fmt.Sprintf("calls: failed to place call to %s after %d attempts: %v", e.To, e.Attempts, e.Err)
}

func (e *InitiationError) Unwrap() error { return e.Err }
