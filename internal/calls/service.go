package calls

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contact-dialer/internal/audit"
	"contact-dialer/internal/telephony"
	"contact-dialer/pkg/logger"
)

// Recorder receives lifecycle events. Recording is best-effort.
type Recorder interface {
	Append(ctx context.Context, e audit.Event) error
}

// Playback describes what a connected call hears.
type Playback struct {
	AudioURL string
	// Prompt, when set, is spoken on connect instead of playing AudioURL.
	Prompt string
}

// Service drives the call state machine. HTTP handlers and the console
// driver both go through it.
type Service struct {
	initiator *Initiator
	provider  telephony.Provider
	store     *Store
	events    Recorder

	playback   Playback
	messageURL string

	now func() time.Time
}

type ServiceOptions struct {
	Playback Playback

	// MessageURL is the webhook a live call is redirected to.
	MessageURL string

	Events Recorder
	Now    func() time.Time
}

func NewService(initiator *Initiator, provider telephony.Provider, store *Store, opts ServiceOptions) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		initiator:  initiator,
		provider:   provider,
		store:      store,
		events:     opts.Events,
		playback:   opts.Playback,
		messageURL: opts.MessageURL,
		now:        opts.Now,
	}
}

// PlaceCall starts a call to the given number (NoActiveCall -> Connecting).
func (s *Service) PlaceCall(ctx context.Context, to string) (string, error) {
	callID, err := s.initiator.PlaceCall(ctx, to)
	if err != nil {
		var initErr *InitiationError
		if errors.As(err, &initErr) {
			s.record(ctx, audit.Event{Type: audit.EventTypeCallFailed, To: initErr.To, Message: initErr.Err.Error()})
		}
		return "", err
	}
	s.record(ctx, audit.Event{Type: audit.EventTypeCallPlaced, CallID: callID, To: to, Status: string(CallStatusInitiated)})
	return callID, nil
}

// Connect answers the voice webhook (Connecting -> Connected).
// It always returns a playable instruction, even for an untracked call.
func (s *Service) Connect(ctx context.Context, callID string) []telephony.Instruction {
	if sess, ok := s.store.Update(callID, func(sess *Session) {
		sess.State = StateConnected
		sess.Status = CallStatusAnswered
		sess.UpdatedAt = s.now().UTC()
	}); ok {
		s.record(ctx, audit.Event{Type: audit.EventTypeCallConnected, CallID: sess.CallID, To: sess.To, Status: string(sess.Status)})
	} else {
		logger.From(ctx).Debug("voice webhook for untracked call", "call_sid", callID)
	}

	if s.playback.Prompt != "" {
		return []telephony.Instruction{telephony.Say(s.playback.Prompt)}
	}
	return []telephony.Instruction{telephony.Play(s.playback.AudioURL)}
}

// TriggerMessage redirects the active call to the message webhook
// (Connected -> MessagePlaying). Without an active call it fails with
// ErrNoActiveCall and makes no backend request.
func (s *Service) TriggerMessage(ctx context.Context) (Session, error) {
	sess, ok := s.store.Current()
	if !ok || sess.CallID == "" {
		return Session{}, ErrNoActiveCall
	}

	err := s.provider.RedirectCall(ctx, telephony.RedirectCallRequest{
		CallID:     sess.CallID,
		WebhookURL: s.messageURL,
	})
	if err != nil {
		logger.From(ctx).Error("mid-call redirect failed", "call_sid", sess.CallID, "err", err)
		return Session{}, fmt.Errorf("calls: redirect %s: %w", sess.CallID, err)
	}

	updated, ok := s.store.Update(sess.CallID, func(cur *Session) {
		cur.State = StateMessagePlaying
		cur.UpdatedAt = s.now().UTC()
	})
	if !ok {
		// The call ended while the redirect was in flight.
		updated = sess
		updated.State = StateMessagePlaying
	}
	logger.From(ctx).Info("message triggered", "call_sid", sess.CallID, "redirect_url", s.messageURL)
	s.record(ctx, audit.Event{Type: audit.EventTypeMessageTriggered, CallID: sess.CallID, To: sess.To, Message: s.messageURL})
	return updated, nil
}

// MessageInstructions answers the message webhook.
func (s *Service) MessageInstructions(ctx context.Context, callID string) []telephony.Instruction {
	s.store.Update(callID, func(sess *Session) {
		sess.State = StateMessagePlaying
		sess.UpdatedAt = s.now().UTC()
	})
	return []telephony.Instruction{telephony.Play(s.playback.AudioURL)}
}

// HandleStatus applies a status notification and reports whether the slot
// was cleared. Terminal statuses for the active call clear it
// (-> Completed -> NoActiveCall). Notifications for other calls are ignored.
func (s *Service) HandleStatus(ctx context.Context, callID, providerStatus string) (Session, bool) {
	log := logger.From(ctx)

	status, known := statusFromTwilio(providerStatus)
	if !known {
		log.Debug("ignoring unknown call status", "call_sid", callID, "status", providerStatus)
		return Session{}, false
	}

	if telephony.IsTerminalStatus(providerStatus) {
		if callID == "" {
			// Never clear on an anonymous notification; it could belong to any call.
			return Session{}, false
		}
		prev, ok := s.store.Clear(callID)
		if !ok {
			log.Debug("terminal status for untracked call", "call_sid", callID, "status", providerStatus)
			return Session{}, false
		}
		prev.Status = status
		prev.State = StateCompleted
		prev.UpdatedAt = s.now().UTC()
		log.Info("call finished", "call_sid", callID, "status", providerStatus)
		s.record(ctx, audit.Event{Type: audit.EventTypeCallCleared, CallID: callID, To: prev.To, Status: providerStatus})
		return prev, true
	}

	sess, ok := s.store.Update(callID, func(sess *Session) {
		// Status callbacks may arrive after the voice webhook already marked the call answered.
		if sess.Status == CallStatusAnswered && status != CallStatusAnswered {
			return
		}
		sess.Status = status
		sess.UpdatedAt = s.now().UTC()
	})
	if ok {
		s.record(ctx, audit.Event{Type: audit.EventTypeStatusChanged, CallID: callID, To: sess.To, Status: providerStatus})
	}
	return sess, false
}

// Current returns the active session, if any.
func (s *Service) Current() (Session, bool) {
	return s.store.Current()
}

func (s *Service) record(ctx context.Context, e audit.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, e); err != nil {
		logger.From(ctx).Debug("event not recorded", "type", e.Type, "err", err)
	}
}
