package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nugget/credo-bot/internal/llm"
	"github.com/nugget/credo-bot/internal/prompts"
)

const (
	askMaxTokens   = 64
	askTemperature = 0.7
)

// runAsk sends one free-form prompt to the configured model and prints
// the reply. It is a smoke test for the model setup, so the reply is
// not filtered.
func runAsk(ctx context.Context, stdout, stderr io.Writer, opts options, prompt string) error {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg)

	backend := newBackend(ctx, cfg, logger)
	if backend == nil {
		return fmt.Errorf("ask: %w (set models.model)", llm.ErrNotConfigured)
	}

	sampling := generatorConfig(cfg).Sampling
	sampling.MaxTokens = askMaxTokens
	if opts.maxTokens > 0 {
		sampling.MaxTokens = opts.maxTokens
	}
	sampling.Temperature = askTemperature
	if opts.hasTemp {
		sampling.Temperature = opts.temp
	}

	reply, err := backend.Generate(ctx, llm.Request{
		Prompt:   prompts.InstructPrompt(prompt),
		Sampling: sampling,
	})
	if errors.Is(err, llm.ErrNotConfigured) {
		return fmt.Errorf("ask: %w", err)
	}
	if err != nil {
		return fmt.Errorf("ask %s: %w", cfg.Models.Model, err)
	}
	fmt.Fprintln(stdout, strings.TrimSpace(reply))
	return nil
}
