package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"contact-dialer/internal/audit"
	"contact-dialer/internal/calls"
	"contact-dialer/internal/directory"
	"contact-dialer/internal/telephony"
	"contact-dialer/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CallService is the call state machine as seen by HTTP handlers.
type CallService interface {
	PlaceCall(ctx context.Context, to string) (string, error)
	Connect(ctx context.Context, callID string) []telephony.Instruction
	TriggerMessage(ctx context.Context) (calls.Session, error)
	MessageInstructions(ctx context.Context, callID string) []telephony.Instruction
	HandleStatus(ctx context.Context, callID, status string) (calls.Session, bool)
	Current() (calls.Session, bool)
}

// EventLister exposes recorded lifecycle events.
type EventLister interface {
	Events() []audit.Event
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, write the response.
type Handlers struct {
	Calls    CallService
	Contacts directory.Source
	Events   EventLister

	// MessageURL is reported back by PlayMessage.
	MessageURL string
}

// --- Twilio webhooks ---
//
// These never answer Twilio with a 5xx; a failed render falls back to an
// empty TwiML document so the backend does not retry.

// Voice answers the instruction webhook fetched when the call connects.
func (h Handlers) Voice(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := telephony.ParseTwilioCallForm(c.Request)
	if err != nil {
		log.Warn("twilio voice webhook parse failed", "err", err)
	}
	writeTwiML(c, h.Calls.Connect(c.Request.Context(), form.CallSid))
}

// Message answers the webhook a live call is redirected to.
func (h Handlers) Message(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := telephony.ParseTwilioCallForm(c.Request)
	if err != nil {
		log.Warn("twilio message webhook parse failed", "err", err)
	}
	writeTwiML(c, h.Calls.MessageInstructions(c.Request.Context(), form.CallSid))
}

// Status consumes call lifecycle notifications. Always 204.
func (h Handlers) Status(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := telephony.ParseTwilioCallForm(c.Request)
	if err != nil {
		log.Warn("twilio status webhook parse failed", "err", err)
		c.Status(http.StatusNoContent)
		return
	}

	log.Info("call status", "call_sid", form.CallSid, "status", form.CallStatus, "sequence", form.SequenceNumber)
	if _, cleared := h.Calls.HandleStatus(c.Request.Context(), form.CallSid, form.CallStatus); cleared {
		log.Info("active call cleared", "call_sid", form.CallSid, "duration_s", form.CallDuration)
	}
	c.Status(http.StatusNoContent)
}

func writeTwiML(c *gin.Context, ins []telephony.Instruction) {
	doc, err := telephony.RenderTwiML(ins...)
	if err != nil {
		logger.FromGin(c).Error("twiml render failed", "err", err)
		doc = telephony.EmptyTwiML
	}
	c.Data(http.StatusOK, "application/xml", []byte(doc))
}

// --- Operator ---

// PlaceCall dials ?number=<E.164>.
func (h Handlers) PlaceCall(c *gin.Context) {
	number := numberParam(c.Query("number"))
	if number == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "number required"})
		return
	}

	callID, err := h.Calls.PlaceCall(c.Request.Context(), number)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"call_sid": callID, "to": number, "message": "Call initiated! SID: " + callID})
	case errors.Is(err, calls.ErrInvalidTarget):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "number required"})
	default:
		var initErr *calls.InitiationError
		if errors.As(err, &initErr) {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "call initiation failed", "attempts": initErr.Attempts})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call initiation failed"})
	}
}

// PlayMessage redirects the active call to the message webhook.
func (h Handlers) PlayMessage(c *gin.Context) {
	sess, err := h.Calls.TriggerMessage(c.Request.Context())
	if err != nil {
		if errors.Is(err, calls.ErrNoActiveCall) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "no active call"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "redirect failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_sid": sess.CallID, "redirect_url": h.MessageURL, "state": sess.State})
}

// CurrentCall reports the tracked session.
func (h Handlers) CurrentCall(c *gin.Context) {
	sess, ok := h.Calls.Current()
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no active call"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// ListEvents returns recorded lifecycle events, oldest first.
func (h Handlers) ListEvents(c *gin.Context) {
	if h.Events == nil {
		c.JSON(http.StatusOK, gin.H{"events": []audit.Event{}})
		return
	}
	evs := h.Events.Events()
	if evs == nil {
		evs = []audit.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": evs})
}

// numberParam restores a leading '+' that query decoding turned into a space.
func numberParam(raw string) string {
	if strings.HasPrefix(raw, " ") && strings.TrimSpace(raw) != "" {
		return "+" + strings.TrimSpace(raw)
	}
	return strings.TrimSpace(raw)
}
