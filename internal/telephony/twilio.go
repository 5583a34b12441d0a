package telephony

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"contact-dialer/internal/config"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// callAPI is the subset of the Twilio REST surface the adapter uses.
type callAPI interface {
	CreateCall(params *api.CreateCallParams) (*api.ApiV2010Call, error)
	UpdateCall(sid string, params *api.UpdateCallParams) (*api.ApiV2010Call, error)
}

// TwilioProvider places and redirects calls through the Twilio REST API.
type TwilioProvider struct {
	api callAPI
}

func NewTwilioProvider(cfg config.TwilioConfig) (*TwilioProvider, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, errors.New("telephony: missing twilio credentials")
	}
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioProvider{api: rest.Api}, nil
}

func (p *TwilioProvider) Name() string { return "twilio" }

func (p *TwilioProvider) PlaceCall(ctx context.Context, req PlaceCallRequest) (string, error) {
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.From) == "" {
		return "", errors.New("telephony: to/from required")
	}
	if req.WebhookURL == "" {
		return "", errors.New("telephony: webhook url required")
	}
	// The SDK has no context support; at least honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &api.CreateCallParams{}
	params.SetTo(req.To)
	params.SetFrom(req.From)
	params.SetUrl(req.WebhookURL)
	params.SetMethod(http.MethodPost)
	if req.StatusWebhookURL != "" {
		params.SetStatusCallback(req.StatusWebhookURL)
		params.SetStatusCallbackMethod(http.MethodPost)
		if len(req.StatusEvents) > 0 {
			params.SetStatusCallbackEvent(req.StatusEvents)
		}
	}

	resp, err := p.api.CreateCall(params)
	if err != nil {
		return "", describeTwilioError("create call", err)
	}
	if resp == nil || resp.Sid == nil || *resp.Sid == "" {
		return "", errors.New("telephony: missing call sid")
	}
	return *resp.Sid, nil
}

func (p *TwilioProvider) RedirectCall(ctx context.Context, req RedirectCallRequest) error {
	if req.CallID == "" || req.WebhookURL == "" {
		return errors.New("telephony: call id and webhook url required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &api.UpdateCallParams{}
	params.SetUrl(req.WebhookURL)
	params.SetMethod(http.MethodPost)

	if _, err := p.api.UpdateCall(req.CallID, params); err != nil {
		return describeTwilioError("update call", err)
	}
	return nil
}

// describeTwilioError keeps the REST status and code visible in logs.
func describeTwilioError(op string, err error) error {
	var rest *twclient.TwilioRestError
	if errors.As(err, &rest) {
		return fmt.Errorf("telephony: %s: status %d code %d: %s: %w", op, rest.Status, rest.Code, rest.Message, err)
	}
	return fmt.Errorf("telephony: %s: %w", op, err)
}
