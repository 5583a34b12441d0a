package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the storage contract for events.
// No Update/Delete methods are provided.
type Repository interface {
	Append(ctx context.Context, e Event) error
	Events() []Event
}

// Service records call lifecycle events for the operator.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Events lists recorded events, oldest first.
func (s *Service) Events() []Event {
	if s == nil || s.repo == nil {
		return nil
	}
	return s.repo.Events()
}
