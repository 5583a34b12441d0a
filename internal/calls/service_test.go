package calls

import (
	"context"
	"errors"
	"testing"

	"contact-dialer/internal/audit"
	"contact-dialer/internal/telephony"
	"contact-dialer/pkg/retry"
)

func newTestService(p *fakeProvider, playback Playback) (*Service, *Store, *audit.Service) {
	store := NewStore()
	events := audit.NewService(audit.NewMemoryRepo(50))
	in := newTestInitiator(p, store, retry.Immediate(3))
	svc := NewService(in, p, store, ServiceOptions{
		Playback:   playback,
		MessageURL: "https://dialer.example.com/message",
		Events:     events,
	})
	return svc, store, events
}

func TestService_FullLifecycle(t *testing.T) {
	p := &fakeProvider{sid: "CA123"}
	svc, store, events := newTestService(p, Playback{AudioURL: "https://cdn.example.com/a.mp3"})
	ctx := context.Background()

	if _, err := svc.PlaceCall(ctx, "+15550001111"); err != nil {
		t.Fatalf("place: %v", err)
	}

	ins := svc.Connect(ctx, "CA123")
	if len(ins) != 1 || ins[0].Action != telephony.InstructionPlay || ins[0].URL != "https://cdn.example.com/a.mp3" {
		t.Fatalf("unexpected connect instructions: %+v", ins)
	}
	if sess, _ := store.Current(); sess.State != StateConnected {
		t.Fatalf("expected connected, got %q", sess.State)
	}

	sess, err := svc.TriggerMessage(ctx)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if sess.State != StateMessagePlaying {
		t.Fatalf("expected message playing, got %q", sess.State)
	}
	if len(p.redirected) != 1 || p.redirected[0].CallID != "CA123" || p.redirected[0].WebhookURL != "https://dialer.example.com/message" {
		t.Fatalf("unexpected redirect: %+v", p.redirected)
	}

	msg := svc.MessageInstructions(ctx, "CA123")
	if len(msg) != 1 || msg[0].Action != telephony.InstructionPlay {
		t.Fatalf("unexpected message instructions: %+v", msg)
	}

	final, cleared := svc.HandleStatus(ctx, "CA123", "completed")
	if !cleared || final.State != StateCompleted || final.Status != CallStatusCompleted {
		t.Fatalf("expected cleared completed session, got %+v cleared=%v", final, cleared)
	}
	if _, ok := svc.Current(); ok {
		t.Fatalf("expected no active call")
	}

	types := map[audit.EventType]bool{}
	for _, e := range events.Events() {
		types[e.Type] = true
	}
	for _, want := range []audit.EventType{audit.EventTypeCallPlaced, audit.EventTypeCallConnected, audit.EventTypeMessageTriggered, audit.EventTypeCallCleared} {
		if !types[want] {
			t.Fatalf("expected %q event recorded", want)
		}
	}
}

func TestService_ConnectSpeaksPromptWhenConfigured(t *testing.T) {
	svc, _, _ := newTestService(&fakeProvider{sid: "CA1"}, Playback{AudioURL: "https://cdn/a.mp3", Prompt: "Hello there"})
	ins := svc.Connect(context.Background(), "CA-unknown")
	if len(ins) != 1 || ins[0].Action != telephony.InstructionSay || ins[0].Text != "Hello there" {
		t.Fatalf("unexpected instructions: %+v", ins)
	}
}

func TestService_TriggerWithoutCallMakesNoRequest(t *testing.T) {
	p := &fakeProvider{sid: "CA1"}
	svc, _, _ := newTestService(p, Playback{AudioURL: "https://cdn/a.mp3"})

	_, err := svc.TriggerMessage(context.Background())
	if !errors.Is(err, ErrNoActiveCall) {
		t.Fatalf("expected ErrNoActiveCall, got %v", err)
	}
	if len(p.redirected) != 0 {
		t.Fatalf("expected zero backend requests")
	}
}

func TestService_TriggerRedirectFailureKeepsState(t *testing.T) {
	p := &fakeProvider{sid: "CA1", redirErr: errors.New("call not in-progress")}
	svc, store, _ := newTestService(p, Playback{AudioURL: "https://cdn/a.mp3"})
	ctx := context.Background()
	_, _ = svc.PlaceCall(ctx, "+15550001111")
	svc.Connect(ctx, "CA1")

	if _, err := svc.TriggerMessage(ctx); err == nil {
		t.Fatalf("expected redirect error")
	}
	if sess, _ := store.Current(); sess.State != StateConnected {
		t.Fatalf("expected state unchanged, got %q", sess.State)
	}
}

func TestService_StatusForOtherCallIsIgnored(t *testing.T) {
	svc, store, _ := newTestService(&fakeProvider{sid: "CA1"}, Playback{AudioURL: "https://cdn/a.mp3"})
	ctx := context.Background()
	_, _ = svc.PlaceCall(ctx, "+15550001111")

	if _, cleared := svc.HandleStatus(ctx, "CA-stale", "completed"); cleared {
		t.Fatalf("expected stale completion to be ignored")
	}
	if _, cleared := svc.HandleStatus(ctx, "", "completed"); cleared {
		t.Fatalf("expected anonymous completion to be ignored")
	}
	if _, ok := store.Current(); !ok {
		t.Fatalf("expected CA1 still active")
	}
}

func TestService_StatusProgressesAndFailureClears(t *testing.T) {
	svc, store, _ := newTestService(&fakeProvider{sid: "CA1"}, Playback{AudioURL: "https://cdn/a.mp3"})
	ctx := context.Background()
	_, _ = svc.PlaceCall(ctx, "+15550001111")

	svc.HandleStatus(ctx, "CA1", "ringing")
	if sess, _ := store.Current(); sess.Status != CallStatusRinging {
		t.Fatalf("expected ringing, got %q", sess.Status)
	}

	final, cleared := svc.HandleStatus(ctx, "CA1", "no-answer")
	if !cleared || final.Status != CallStatusFailed {
		t.Fatalf("expected failed + cleared, got %+v cleared=%v", final, cleared)
	}
}

func TestService_PlaceCallFailureRecordsEvent(t *testing.T) {
	p := &fakeProvider{placeErr: errors.New("down"), failFirst: 10}
	svc, _, events := newTestService(p, Playback{AudioURL: "https://cdn/a.mp3"})

	if _, err := svc.PlaceCall(context.Background(), "+15550001111"); err == nil {
		t.Fatalf("expected error")
	}
	evs := events.Events()
	if len(evs) != 1 || evs[0].Type != audit.EventTypeCallFailed {
		t.Fatalf("expected call_failed event, got %+v", evs)
	}
}
