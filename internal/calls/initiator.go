package calls

import (
	"context"
	"errors"
	"strings"
	"time"

	"contact-dialer/internal/telephony"
	"contact-dialer/pkg/logger"
	"contact-dialer/pkg/retry"
)

// InitiatorOptions configures outbound placement.
type InitiatorOptions struct {
	// From is the caller id presented to the callee.
	From string

	// VoiceURL is the instruction webhook fetched on connect.
	VoiceURL string
	// StatusURL receives lifecycle notifications. Optional.
	StatusURL string

	Policy retry.Policy
	Now    func() time.Time
}

// Initiator places outbound calls with a retry policy and records the
// resulting session in the store.
type Initiator struct {
	provider telephony.Provider
	store    *Store
	opts     InitiatorOptions
}

func NewInitiator(provider telephony.Provider, store *Store, opts InitiatorOptions) *Initiator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Initiator{provider: provider, store: store, opts: opts}
}

// PlaceCall dials to and returns the provider call id.
//
// An empty target fails with ErrInvalidTarget before any backend request.
// Backend failures are retried per policy; exhaustion is logged and returned
// as *InitiationError.
func (i *Initiator) PlaceCall(ctx context.Context, to string) (string, error) {
	log := logger.From(ctx)

	to = strings.TrimSpace(to)
	if to == "" {
		return "", ErrInvalidTarget
	}
	if i.provider == nil || i.store == nil {
		return "", errors.New("calls: initiator not configured")
	}

	req := telephony.PlaceCallRequest{
		To:         to,
		From:       i.opts.From,
		WebhookURL: i.opts.VoiceURL,
	}
	if i.opts.StatusURL != "" {
		req.StatusWebhookURL = i.opts.StatusURL
		req.StatusEvents = telephony.DefaultStatusEvents
	}

	var callID string
	attempts := 0
	err := retry.Do(ctx, i.opts.Policy, func(ctx context.Context, attempt int) error {
		attempts = attempt
		id, err := i.provider.PlaceCall(ctx, req)
		if err != nil {
			log.Warn("call attempt failed", "attempt", attempt, "to", to, "provider", i.provider.Name(), "err", err)
			return err
		}
		callID = id
		return nil
	})
	if err != nil {
		var ex *retry.ExhaustedError
		if errors.As(err, &ex) {
			attempts = ex.Attempts
			err = ex.Last
		}
		log.Error("call initiation failed", "to", to, "attempts", attempts, "err", err)
		return "", &InitiationError{To: to, Attempts: attempts, Err: err}
	}

	now := i.opts.Now().UTC()
	prev, replaced := i.store.Replace(Session{
		CallID:    callID,
		To:        to,
		Status:    CallStatusInitiated,
		State:     StateConnecting,
		StartedAt: now,
		UpdatedAt: now,
	})
	if replaced {
		log.Warn("replacing active call", "previous_call_sid", prev.CallID, "call_sid", callID)
	}
	log.Info("call initiated", "call_sid", callID, "to", to, "attempts", attempts)
	return callID, nil
}
