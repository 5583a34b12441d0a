package retry

import (
	"context"
	"errors"
	"time"
)

// Policy controls how an operation is retried.
// Keep it config-driven; the zero value performs a single attempt.
type Policy struct {
	MaxAttempts int

	// Backoff returns the wait before the given attempt (2, 3, ...).
	Backoff func(attempt int) time.Duration

	// Retryable decides whether an error is worth another attempt.
	// Nil retries every error.
	Retryable func(err error) bool

	// Sleep waits for d or until ctx is done. Nil uses a real timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Fixed returns a policy that waits the same delay between attempts.
func Fixed(attempts int, delay time.Duration) Policy {
	return Policy{
		MaxAttempts: attempts,
		Backoff:     func(int) time.Duration { return delay },
	}
}

// Immediate returns a policy with no wait between attempts.
func Immediate(attempts int) Policy {
	return Fixed(attempts, 0)
}

// ExhaustedError is returned once every attempt has failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return "retry: attempts exhausted: " + e.Last.Error()
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Do runs fn until it succeeds, the policy gives up, or ctx is done.
// fn receives the 1-based attempt number.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = timerSleep
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && p.Backoff != nil {
			if err := sleep(ctx, p.Backoff(attempt)); err != nil {
				return &ExhaustedError{Attempts: attempt - 1, Last: errors.Join(last, err)}
			}
		}

		last = fn(ctx, attempt)
		if last == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(last) {
			return &ExhaustedError{Attempts: attempt, Last: last}
		}
	}
	return &ExhaustedError{Attempts: attempts, Last: last}
}

func timerSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
