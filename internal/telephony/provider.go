package telephony

import (
	"context"
)

// Provider defines the provider-agnostic interface used by call orchestration.
//
// Rules:
// - No provider SDK calls outside telephony adapters.
// - Keep request/response types provider-agnostic.
type Provider interface {
	Name() string

	// PlaceCall asks the backend to dial req.To and returns the provider call id.
	PlaceCall(ctx context.Context, req PlaceCallRequest) (string, error)

	// RedirectCall points a live call at a new instruction webhook.
	RedirectCall(ctx context.Context, req RedirectCallRequest) error
}

// PlaceCallRequest is built per attempt and never stored.
type PlaceCallRequest struct {
	// To and From are E.164 where possible.
	To   string `json:"to"`
	From string `json:"from"`

	// WebhookURL is fetched by the backend when the call connects.
	WebhookURL string `json:"webhook_url"`

	// StatusWebhookURL is optional; StatusEvents lists lifecycle events to post to it.
	StatusWebhookURL string   `json:"status_webhook_url,omitempty"`
	StatusEvents     []string `json:"status_events,omitempty"`
}

type RedirectCallRequest struct {
	CallID     string `json:"call_id"`
	WebhookURL string `json:"webhook_url"`
}

// DefaultStatusEvents are the lifecycle events subscribed on every placement.
var DefaultStatusEvents = []string{"initiated", "ringing", "answered", "completed"}
