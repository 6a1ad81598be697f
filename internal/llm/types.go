package llm

import (
	"log/slog"
	"time"
)

// LevelTrace is below Debug, used for wire-level payload logging.
const LevelTrace = slog.Level(-8)

// Sampling holds decoding parameters. Zero values are left to the
// provider's defaults.
type Sampling struct {
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	// ContextTokens is the context window to allocate. Only Ollama
	// honours it.
	ContextTokens int `yaml:"context_tokens"`
	MaxTokens     int `yaml:"max_tokens"`
}

// Request is one single-turn completion.
type Request struct {
	Model    string
	System   string
	Prompt   string
	Sampling Sampling
}

// Response is the provider-neutral reply.
type Response struct {
	Model        string
	Text         string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
}
