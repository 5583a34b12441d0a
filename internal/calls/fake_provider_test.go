package calls

import (
	"context"
	"sync"

	"contact-dialer/internal/telephony"
)

type fakeProvider struct {
	mu sync.Mutex

	sid       string
	failFirst int // number of PlaceCall attempts that fail before success
	placeErr  error
	redirErr  error

	placed     []telephony.PlaceCallRequest
	redirected []telephony.RedirectCallRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) PlaceCall(ctx context.Context, req telephony.PlaceCallRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, req)
	if f.placeErr != nil && len(f.placed) <= f.failFirst {
		return "", f.placeErr
	}
	return f.sid, nil
}

func (f *fakeProvider) RedirectCall(ctx context.Context, req telephony.RedirectCallRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redirected = append(f.redirected, req)
	return f.redirErr
}
