package llm

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// RetryPolicy decides whether (and how long) a failed reasoning-service call
// waits before another attempt. The taxonomy separates transient failures
// worth waiting for (rate limits, server hiccups) from likely-permanent ones.
type RetryPolicy struct {
	// MaxAttempts caps the total number of calls, first attempt included.
	MaxAttempts int
	// RateLimitWait applies to 429 responses that carry no advised duration.
	RateLimitWait time.Duration
	// ServerErrorWait applies to 500 and 503 responses.
	ServerErrorWait time.Duration
}

// DefaultRetryPolicy matches the service's documented throttling behavior.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		RateLimitWait:   60 * time.Second,
		ServerErrorWait: 10 * time.Second,
	}
}

// BackoffFor classifies err. It returns the wait duration and true when the
// call should be retried, false when the error is not worth waiting out.
func (p RetryPolicy) BackoffFor(err error) (time.Duration, bool) {
	var se *StatusError
	if !errors.As(err, &se) {
		return 0, false
	}
	switch se.Status {
	case http.StatusTooManyRequests:
		if se.RetryAfter > 0 {
			return se.RetryAfter, true
		}
		return p.RateLimitWait, true
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return p.ServerErrorWait, true
	default:
		return 0, false
	}
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
