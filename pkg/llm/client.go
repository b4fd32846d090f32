package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when the provider has no credentials
var ErrNotConfigured = errors.New("llm: provider not configured")

// ErrEmptyResponse is returned when the provider answered with no text
var ErrEmptyResponse = errors.New("llm: empty response")

// Client is a black-box text completion service
type Client interface {
	// Complete returns the completion text for a single prompt
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is a single-prompt completion request
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Unconfigured is a Client that always fails with ErrNotConfigured.
// It stands in when no provider key is set so callers take their fallback path.
type Unconfigured struct{}

// Complete implements Client
func (Unconfigured) Complete(context.Context, CompletionRequest) (string, error) {
	return "", ErrNotConfigured
}
