package generator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nugget/credo-bot/internal/credo"
	"github.com/nugget/credo-bot/internal/llm"
	"github.com/nugget/credo-bot/internal/prompts"
	"github.com/nugget/credo-bot/internal/textpolicy"
)

// Pipeline runs the generate, clean, validate loop.
type Pipeline struct {
	backend Backend
	cfg     Config
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// New creates a pipeline. A nil backend always produces the fallback.
// Zero fields in cfg take their DefaultConfig values.
func New(backend Backend, cfg Config, logger *slog.Logger) *Pipeline {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RelaxedMin <= 0 {
		cfg.RelaxedMin = def.RelaxedMin
	}
	if cfg.Policy == (textpolicy.LengthPolicy{}) {
		cfg.Policy = def.Policy
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		backend: backend,
		cfg:     cfg,
		logger:  logger,
		sleep:   sleepContext,
	}
}

// Generate returns a body for entry. It always produces usable text; the
// error is non-nil only when ctx is cancelled, in which case nothing
// should be delivered.
func (p *Pipeline) Generate(ctx context.Context, entry credo.Entry, seed uint64) (Result, error) {
	if p.backend == nil {
		p.logger.Info("no text backend, using template")
		return p.fallback(entry, seed, nil), nil
	}

	initial := prompts.CredoInsightPrompt(entry.Key, entry.Title)
	prompt := initial
	var attempts []Attempt
	var candidate string

	for n := 1; n <= p.cfg.MaxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return Result{Attempts: attempts}, err
		}

		start := time.Now()
		raw, err := p.backend.Generate(ctx, llm.Request{Prompt: prompt, Sampling: p.cfg.Sampling})
		a := Attempt{Number: n, Prompt: prompt, Duration: time.Since(start)}

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{Attempts: attempts}, ctxErr
			}
			if errors.Is(err, llm.ErrNotConfigured) {
				p.logger.Info("text backend not configured, using template")
				return p.fallback(entry, seed, nil), nil
			}
			a.Outcome = OutcomeBackendError
			a.Err = err
			attempts = append(attempts, a)
			p.logger.Warn("generation attempt failed",
				"attempt", n, "max_attempts", p.cfg.MaxAttempts, "error", err)

			if n < p.cfg.MaxAttempts && p.cfg.Backoff > 0 {
				if err := p.sleep(ctx, p.cfg.Backoff); err != nil {
					return Result{Attempts: attempts}, err
				}
			}
			continue
		}

		a.Raw = raw
		a.Cleaned = textpolicy.Clean(raw)
		a.Length = textpolicy.Len(a.Cleaned)
		if a.Cleaned != "" {
			candidate = a.Cleaned
		}

		switch p.cfg.Policy.Validate(a.Cleaned) {
		case textpolicy.Accepted:
			a.Outcome = OutcomeAccepted
			attempts = append(attempts, a)
			return p.done(a.Cleaned, SourceLLM, attempts), nil

		case textpolicy.TooLong:
			a.Outcome = OutcomeTooLong
			attempts = append(attempts, a)
			clamped := p.cfg.Policy.Clamp(a.Cleaned)
			if p.cfg.Policy.Validate(clamped) == textpolicy.Accepted {
				return p.done(clamped, SourceClamped, attempts), nil
			}
			prompt = initial

		case textpolicy.TooShort:
			a.Outcome = OutcomeTooShort
			attempts = append(attempts, a)
			if a.Cleaned != "" {
				prompt = prompts.ExpansionPrompt(a.Cleaned)
			} else {
				prompt = initial
			}
		}

		p.logger.Debug("candidate rejected",
			"attempt", n, "outcome", a.Outcome, "length", a.Length, "text", a.Cleaned)
	}

	if candidate != "" && textpolicy.Len(candidate) >= p.cfg.RelaxedMin {
		return p.done(p.cfg.Policy.Clamp(candidate), SourceRelaxed, attempts), nil
	}

	p.logger.Warn("generation exhausted, using template", "attempts", len(attempts))
	return p.fallback(entry, seed, attempts), nil
}

func (p *Pipeline) done(text string, src Source, attempts []Attempt) Result {
	p.logger.Info("insight generated",
		"source", src, "attempts", len(attempts), "length", textpolicy.Len(text))
	return Result{Text: text, Source: src, Attempts: attempts}
}

func (p *Pipeline) fallback(entry credo.Entry, seed uint64, attempts []Attempt) Result {
	return Result{Text: Fallback(entry, seed), Source: SourceFallback, Attempts: attempts}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
