package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"contact-dialer/internal/audit"
	"contact-dialer/internal/auth"
	"contact-dialer/internal/config"
	"contact-dialer/internal/httpapi"
	"contact-dialer/internal/telephony"
	"contact-dialer/pkg/logger"

	"github.com/gin-gonic/gin"
)

type fakeProvider struct {
	mu         sync.Mutex
	sid        string
	placed     []telephony.PlaceCallRequest
	redirected []telephony.RedirectCallRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) PlaceCall(ctx context.Context, req telephony.PlaceCallRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, req)
	return f.sid, nil
}

func (f *fakeProvider) RedirectCall(ctx context.Context, req telephony.RedirectCallRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redirected = append(f.redirected, req)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		App:      config.AppConfig{Env: "local", Port: 5000, PublicBaseURL: "https://dialer.example.com"},
		Twilio:   config.TwilioConfig{AccountSID: "AC1", AuthToken: "tok", PhoneNumber: "+15550000000"},
		Playback: config.PlaybackConfig{AudioURL: "https://cdn.example.com/a.mp3"},
		Retry:    config.RetryConfig{MaxAttempts: 1, Delay: time.Millisecond},
		Auth:     config.AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef", TokenTTL: time.Hour},
	}
}

func newTestServer(t *testing.T, p *fakeProvider, operatorMW gin.HandlerFunc) (*gin.Engine, httpapi.Handlers) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	events := audit.NewService(audit.NewMemoryRepo(eventLogSize))
	h := httpapi.Handlers{
		Calls:      newCallService(cfg, p, events),
		Events:     events,
		MessageURL: cfg.WebhookURL("/message"),
	}
	return newRouter(logger.NewWithWriter("local", io.Discard), h, operatorMW), h
}

func TestCallThenPlayMessage(t *testing.T) {
	p := &fakeProvider{sid: "CA123"}
	r, h := newTestServer(t, p, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/call?number=+15550001111", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "CA123") {
		t.Fatalf("unexpected /call response %d %s", w.Code, w.Body.String())
	}
	if sess, ok := h.Calls.Current(); !ok || sess.CallID != "CA123" {
		t.Fatalf("expected CA123 tracked, got %+v ok=%v", sess, ok)
	}
	if got := p.placed[0]; got.To != "+15550001111" || got.From != "+15550000000" ||
		got.WebhookURL != "https://dialer.example.com/voice" || got.StatusWebhookURL != "https://dialer.example.com/status" {
		t.Fatalf("unexpected placement request: %+v", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/play-message", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(p.redirected) != 1 || p.redirected[0].CallID != "CA123" || p.redirected[0].WebhookURL != "https://dialer.example.com/message" {
		t.Fatalf("unexpected redirect: %+v", p.redirected)
	}
}

func TestOperatorRoutesRequireToken(t *testing.T) {
	cfg := testConfig()
	m, err := auth.NewManager(cfg.Auth)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	p := &fakeProvider{sid: "CA1"}
	r, _ := newTestServer(t, p, auth.RequireOperatorToken(m))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/call?number=%2B15550001111", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if len(p.placed) != 0 {
		t.Fatalf("expected no placement without token")
	}

	tok, err := m.Issue(time.Now(), "ops")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/call?number=%2B15550001111&access_token="+tok, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}

	// webhooks stay open
	form := url.Values{"CallSid": {"CA1"}, "CallStatus": {"completed"}}
	req := httptest.NewRequest(http.MethodPost, "/status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	r, _ := newTestServer(t, &fakeProvider{}, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireForMode(t *testing.T) {
	cfg := testConfig()
	if err := requireForMode(cfg, modeServer); err != nil {
		t.Fatalf("server: %v", err)
	}
	if err := requireForMode(cfg, modeStatic); err == nil {
		t.Fatalf("expected static to require TARGET_PHONE_NUMBER")
	}
	if err := requireForMode(cfg, modeInteractive); err == nil {
		t.Fatalf("expected interactive to require directory credentials")
	}
	if err := requireForMode(cfg, "bogus"); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}
