package telephony

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseTwilioCallForm(t *testing.T) {
	body := strings.NewReader("CallSid=CA123&From=%2B15551234567&To=%2B15557654321&CallStatus=Completed&CallDuration=42&SequenceNumber=3")
	r := httptest.NewRequest(http.MethodPost, "/status", body)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form, err := ParseTwilioCallForm(r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if form.CallSid != "CA123" {
		t.Fatalf("expected CallSid")
	}
	if form.From != "+15551234567" || form.To != "+15557654321" {
		t.Fatalf("unexpected from/to: %q %q", form.From, form.To)
	}
	if form.CallStatus != TwilioStatusCompleted {
		t.Fatalf("expected lower-cased status, got %q", form.CallStatus)
	}
	if form.CallDuration != 42 || form.SequenceNumber != 3 {
		t.Fatalf("unexpected numeric fields: %+v", form)
	}
}

func TestIsTerminalStatus(t *testing.T) {
	for _, s := range []string{"completed", "busy", "failed", "no-answer", "canceled"} {
		if !IsTerminalStatus(s) {
			t.Fatalf("expected %q terminal", s)
		}
	}
	for _, s := range []string{"queued", "initiated", "ringing", "in-progress", ""} {
		if IsTerminalStatus(s) {
			t.Fatalf("expected %q non-terminal", s)
		}
	}
}
