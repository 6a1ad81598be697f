// Package generator produces the insight body for a credo entry. It asks
// a text backend for a sentence, forces the reply through the character
// and length rules, re-prompts a bounded number of times, and falls back
// to a template built from the catalog when the backend cannot deliver.
package generator

import (
	"context"
	"time"

	"github.com/nugget/credo-bot/internal/llm"
	"github.com/nugget/credo-bot/internal/textpolicy"
)

// Outcome classifies one backend call.
type Outcome string

const (
	OutcomeAccepted     Outcome = "accepted"
	OutcomeTooShort     Outcome = "too_short"
	OutcomeTooLong      Outcome = "too_long"
	OutcomeBackendError Outcome = "backend_error"
)

// Attempt records one backend call. Attempts live only for the duration
// of a Generate call and its Result.
type Attempt struct {
	Number   int
	Prompt   string
	Raw      string
	Cleaned  string
	Length   int
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Source says which path produced the text.
type Source string

const (
	SourceLLM      Source = "llm"         // accepted as generated
	SourceClamped  Source = "llm_clamped" // overlong, cut to fit
	SourceRelaxed  Source = "relaxed"     // below the minimum but above the relaxed floor
	SourceFallback Source = "fallback"    // catalog template
)

// Result is the body chosen for today's report.
type Result struct {
	Text     string
	Source   Source
	Attempts []Attempt
}

// Backend is anything that can turn a prompt into text. *llm.Generator
// satisfies it; returning llm.ErrNotConfigured means no model is set up.
type Backend interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// Config bounds the retry loop.
type Config struct {
	// MaxAttempts is the total number of backend calls, including the first.
	MaxAttempts int
	// RelaxedMin is the floor for accepting the last candidate once the
	// attempts are used up.
	RelaxedMin int
	// Backoff is the pause after a backend error. Length failures retry
	// immediately.
	Backoff  time.Duration
	Policy   textpolicy.LengthPolicy
	Sampling llm.Sampling
}

// DefaultConfig returns five attempts, a 24 character relaxed floor and
// a two second backoff against the 28 to 70 character policy.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		RelaxedMin:  24,
		Backoff:     2 * time.Second,
		Policy:      textpolicy.DefaultPolicy,
		Sampling: llm.Sampling{
			Temperature:   0.7,
			TopP:          0.9,
			ContextTokens: 1024,
			MaxTokens:     128,
		},
	}
}
