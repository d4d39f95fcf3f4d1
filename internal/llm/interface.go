package llm

import (
	"context"
	"fmt"
	"time"
)

// Request is one completion call.
type Request struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Prompt      string
}

// Client is the large-language-model endpoint the generator talks to.
type Client interface {
	// Complete sends the prompt and returns the model's text content.
	Complete(ctx context.Context, req Request) (string, error)
}

// StatusError carries the HTTP status of a failed completion call plus any
// Retry-After hint, so the generator's retry policy can classify it.
type StatusError struct {
	Code       int
	RetryAfter time.Duration
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm endpoint returned HTTP %d: %s", e.Code, e.Message)
}
