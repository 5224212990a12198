package llm

import (
	"context"
	"fmt"
	"time"
)

// CompletionClient is the reasoning-service port the matcher depends on.
// Implementations must support a strict-JSON response mode and surface HTTP
// status codes through StatusError so the retry taxonomy can classify them.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is one prompt for the reasoning service.
type CompletionRequest struct {
	Prompt string
	// ResponseFormat hints the wire-level response mode, e.g. "json_object".
	ResponseFormat string
}

// StatusError carries the HTTP status of a failed reasoning-service call.
// RetryAfter is the service-advised wait from a 429, zero when absent.
type StatusError struct {
	Status     int
	RetryAfter time.Duration
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reasoning service status %d: %s", e.Status, e.Body)
}
