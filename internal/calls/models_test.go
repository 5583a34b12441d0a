package calls

import "testing"

func TestStatusFromTwilio(t *testing.T) {
	cases := map[string]CallStatus{
		"queued":      CallStatusInitiated,
		"initiated":   CallStatusInitiated,
		"ringing":     CallStatusRinging,
		"in-progress": CallStatusAnswered,
		"completed":   CallStatusCompleted,
		"busy":        CallStatusFailed,
		"no-answer":   CallStatusFailed,
		"canceled":    CallStatusFailed,
		"failed":      CallStatusFailed,
	}
	for in, want := range cases {
		got, ok := statusFromTwilio(in)
		if !ok || got != want {
			t.Fatalf("%q: expected %q, got %q (ok=%v)", in, want, got, ok)
		}
	}
	if _, ok := statusFromTwilio("bogus"); ok {
		t.Fatalf("expected unknown status to be ignored")
	}
}
