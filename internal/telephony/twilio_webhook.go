package telephony

import (
	"net/http"
	"strconv"
	"strings"
)

// TwilioCallForm captures the subset of voice and status webhook fields we care about.
// Twilio sends application/x-www-form-urlencoded by default.
// Ref: https://www.twilio.com/docs/voice/twiml#request-parameters
//
// Keep it provider-adapter-only. State transitions are not made here.
type TwilioCallForm struct {
	CallSid        string
	AccountSid     string
	From           string
	To             string
	Direction      string
	CallStatus     string
	CallDuration   int
	SequenceNumber int
	Timestamp      string
	AnsweredBy     string
}

func ParseTwilioCallForm(r *http.Request) (TwilioCallForm, error) {
	if err := r.ParseForm(); err != nil {
		return TwilioCallForm{}, err
	}
	f := TwilioCallForm{
		CallSid:        strings.TrimSpace(r.PostFormValue("CallSid")),
		AccountSid:     strings.TrimSpace(r.PostFormValue("AccountSid")),
		From:           normalizePhone(r.PostFormValue("From")),
		To:             normalizePhone(r.PostFormValue("To")),
		Direction:      r.PostFormValue("Direction"),
		CallStatus:     strings.ToLower(strings.TrimSpace(r.PostFormValue("CallStatus"))),
		CallDuration:   atoiOrZero(r.PostFormValue("CallDuration")),
		SequenceNumber: atoiOrZero(r.PostFormValue("SequenceNumber")),
		Timestamp:      r.PostFormValue("Timestamp"),
		AnsweredBy:     r.PostFormValue("AnsweredBy"),
	}
	return f, nil
}

// CallStatus values posted by Twilio.
const (
	TwilioStatusQueued     = "queued"
	TwilioStatusInitiated  = "initiated"
	TwilioStatusRinging    = "ringing"
	TwilioStatusInProgress = "in-progress"
	TwilioStatusCompleted  = "completed"
	TwilioStatusBusy       = "busy"
	TwilioStatusFailed     = "failed"
	TwilioStatusNoAnswer   = "no-answer"
	TwilioStatusCanceled   = "canceled"
)

// IsTerminalStatus reports whether Twilio will send no further events for the call.
func IsTerminalStatus(s string) bool {
	switch s {
	case TwilioStatusCompleted, TwilioStatusBusy, TwilioStatusFailed, TwilioStatusNoAnswer, TwilioStatusCanceled:
		return true
	default:
		return false
	}
}

func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	// Twilio sometimes sends "anonymous" or empty; keep as-is.
	return s
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
