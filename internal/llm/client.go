// Package llm talks to the text-generation backends: a local Ollama
// server, the Anthropic Messages API, and the Gemini API.
package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no model is set up. Callers treat it
// as a designed branch, not a failure.
var ErrNotConfigured = errors.New("llm: no model configured")

// Client is the interface every provider implements.
type Client interface {
	// Complete sends a single-turn prompt and returns the model's reply.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Ping checks that the provider is reachable with the configured
	// credentials.
	Ping(ctx context.Context) error
}
