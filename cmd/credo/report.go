package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/nugget/credo-bot/internal/buildinfo"
	"github.com/nugget/credo-bot/internal/calendar"
	"github.com/nugget/credo-bot/internal/config"
	"github.com/nugget/credo-bot/internal/credo"
	"github.com/nugget/credo-bot/internal/delivery"
	"github.com/nugget/credo-bot/internal/delivery/email"
	"github.com/nugget/credo-bot/internal/delivery/lineworks"
	"github.com/nugget/credo-bot/internal/exclusion"
	"github.com/nugget/credo-bot/internal/generator"
	"github.com/nugget/credo-bot/internal/holiday"
	"github.com/nugget/credo-bot/internal/ledger"
	"github.com/nugget/credo-bot/internal/llm"
	"github.com/nugget/credo-bot/internal/metrics"
	"github.com/nugget/credo-bot/internal/mqtt"
	"github.com/nugget/credo-bot/internal/outcome"
	"github.com/nugget/credo-bot/internal/scheduler"
	"github.com/nugget/credo-bot/internal/textpolicy"
)

const (
	ledgerFile     = "credo.db"
	notifyTimeout  = 30 * time.Second
	ledgerDeadline = 10 * time.Second
	probeTimeout   = 10 * time.Second
)

// newLogger builds the process logger from the config. Logs go to
// stderr; stdout is reserved for reports and command output.
func newLogger(stderr io.Writer, cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLogLevel(cfg.LogLevel) // validated already
	return config.NewLogger(stderr, level, cfg.LogFormat)
}

// reportDate resolves "today" in the report time zone, or parses the
// -date override.
func reportDate(cfg *config.Config, override string) (time.Time, error) {
	loc, err := cfg.Report.Location()
	if err != nil {
		return time.Time{}, err
	}
	if override == "" {
		return time.Now().In(loc), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, override, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("-date %q: want YYYY-MM-DD", override)
	}
	return d, nil
}

// decide loads the exclusions and gates today. A broken exclusion file
// is logged, not fatal; the environment tokens still apply.
func decide(cfg *config.Config, today time.Time, logger *slog.Logger) scheduler.Decision {
	skip, err := exclusion.Load(cfg.Schedule.SkipDates, cfg.Schedule.SkipDatesFile)
	if err != nil {
		logger.Warn("exclusion file unreadable, using remaining exclusions", "error", err)
	}
	logger.Debug("exclusions loaded",
		"file", cfg.Schedule.SkipDatesFile,
		"fixed", skip.Fixed(),
		"recurring", skip.Recurring(),
	)

	sched := scheduler.New(calendar.Rules{Holidays: holiday.Japan{}}, skip)
	return sched.Decide(today)
}

// newRouter registers every provider that has credentials and maps the
// configured model to its provider.
func newRouter(ctx context.Context, cfg *config.Config, logger *slog.Logger) *llm.MultiClient {
	ollama := llm.NewOllamaClient(cfg.Models.OllamaURL, logger)
	multi := llm.NewMultiClient(ollama)
	multi.AddProvider(llm.ProviderOllama, ollama)

	if cfg.Anthropic.Configured() {
		multi.AddProvider(llm.ProviderAnthropic, llm.NewAnthropicClient(cfg.Anthropic.APIKey, logger))
	}
	if cfg.Gemini.Configured() {
		g, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, "", logger)
		if err != nil {
			logger.Warn("gemini provider unavailable", "error", err)
		} else {
			multi.AddProvider(llm.ProviderGemini, g)
		}
	}
	if cfg.Models.Provider != "" {
		multi.AddModel(cfg.Models.Model, cfg.Models.Provider)
	}
	return multi
}

// newBackend wires the configured model behind the generator's Backend
// interface. It returns nil when no model is configured, which sends the
// pipeline straight to the template.
func newBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) generator.Backend {
	if !cfg.Models.Configured() {
		return nil
	}
	logger.Debug("text backend configured",
		"model", cfg.Models.Model,
		"provider", cfg.Models.Provider,
		"timeout", cfg.Models.Timeout,
	)
	return &llm.Generator{Client: newRouter(ctx, cfg, logger), Model: cfg.Models.Model, Timeout: cfg.Models.Timeout}
}

// probeBackend reports whether the configured model answers, and for
// Ollama whether the model is installed. A run with a dead backend still
// posts the template, so problems are warnings.
func probeBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	if !cfg.Models.Configured() {
		logger.Info("no model configured, reports use the template")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	mlog := logger.With("model", cfg.Models.Model, "provider", cfg.Models.Provider)
	if err := newRouter(ctx, cfg, logger).PingModel(ctx, cfg.Models.Model); err != nil {
		mlog.Warn("model backend unreachable, reports will use the template", "error", err)
		return
	}
	if cfg.Models.Provider != llm.ProviderOllama {
		mlog.Info("model backend reachable")
		return
	}

	installed, err := llm.NewOllamaClient(cfg.Models.OllamaURL, logger).ListModels(ctx)
	if err != nil {
		mlog.Warn("could not list ollama models", "error", err)
		return
	}
	if !slices.Contains(installed, cfg.Models.Model) && !slices.Contains(installed, cfg.Models.Model+":latest") {
		mlog.Warn("model not installed on the ollama server", "installed", installed)
		return
	}
	mlog.Info("model backend reachable")
}

func generatorConfig(cfg *config.Config) generator.Config {
	return generator.Config{
		MaxAttempts: cfg.Generation.MaxAttempts,
		RelaxedMin:  cfg.Generation.RelaxedMin,
		Backoff:     cfg.Generation.Backoff,
		Policy:      textpolicy.DefaultPolicy,
		Sampling: llm.Sampling{
			Temperature:   cfg.Models.Temperature,
			TopP:          cfg.Models.TopP,
			ContextTokens: cfg.Models.ContextTokens,
			MaxTokens:     cfg.Models.MaxTokens,
		},
	}
}

// newDeliverer returns the channel named by delivery.kind.
func newDeliverer(cfg *config.Config, stdout io.Writer, logger *slog.Logger) (delivery.Deliverer, error) {
	switch cfg.Delivery.Kind {
	case "lineworks":
		lw := cfg.Delivery.LineWorks
		p, err := lineworks.NewPoster(lineworks.Config{
			LoginURL:     lw.LoginURL,
			ID:           lw.ID,
			Password:     lw.Password,
			Room:         lw.Room,
			ChromeBinary: lw.ChromeBinary,
			ShowBrowser:  lw.ShowBrowser,
			Timeout:      lw.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "email":
		em := cfg.Delivery.Email
		return email.NewSender(email.Config{
			From:    em.From,
			To:      em.To,
			Subject: em.Subject,
			SMTP: email.SMTPConfig{
				Host:     em.SMTP.Host,
				Port:     em.SMTP.Port,
				Username: em.SMTP.Username,
				Password: em.SMTP.Password,
				StartTLS: em.SMTP.StartTLS,
			},
		}, logger), nil
	default:
		return &delivery.Writer{W: stdout}, nil
	}
}

// guarded reports whether a channel posts somewhere a repeat would be
// visible. Only those go through the ledger.
func guarded(d delivery.Deliverer) bool {
	_, plain := d.(*delivery.Writer)
	return !plain
}

// runCheck prints today's decision.
func runCheck(ctx context.Context, stdout, stderr io.Writer, opts options) error {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg)
	today, err := reportDate(cfg, opts.date)
	if err != nil {
		return err
	}
	d := decide(cfg, today, logger)
	probeBackend(ctx, cfg, logger)
	if opts.outputFmt == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	fmt.Fprintln(stdout, d.String())
	return nil
}

// runReport is the daily job: gate, generate, assemble, deliver, report.
// With -dry-run the gate is only logged and the report is printed
// instead of delivered.
func runReport(ctx context.Context, stdout, stderr io.Writer, opts options) error {
	start := time.Now()

	cfg, cfgPath, err := loadConfig(opts)
	if err != nil {
		return err
	}
	runID := newRunID()
	logger := newLogger(stderr, cfg).With("run_id", runID)
	if cfgPath == "" {
		cfgPath = "(environment)"
	}
	logger.Info("credo starting", "version", buildinfo.Version, "config", cfgPath, "dry_run", opts.dryRun)

	today, err := reportDate(cfg, opts.date)
	if err != nil {
		return err
	}
	summary := outcome.Summary{
		Date:    today.Format(time.DateOnly),
		RunID:   runID,
		Version: buildinfo.Version,
	}
	finish := func(s outcome.Summary) {
		s.Duration = time.Since(start).Seconds()
		s.FinishedAt = time.Now().UTC()
		publishOutcome(ctx, cfg, s, logger)
	}

	d := decide(cfg, today, logger)
	summary.Reason, summary.Detail = string(d.Reason), d.Detail
	if !d.ShouldRun {
		if !opts.dryRun {
			logger.Info("no report today", "decision", d.String())
			summary.Status = outcome.StatusSkipped
			finish(summary)
			return nil
		}
		logger.Info("not a run day, continuing for dry run", "decision", d.String())
	}

	catalog := credo.Default()
	seed := rand.Uint64()
	entry := catalog.Pick(seed)

	pipeline := generator.New(newBackend(ctx, cfg, logger), generatorConfig(cfg), logger)
	res, err := pipeline.Generate(ctx, entry, seed)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	msg := credo.Assemble(cfg.Report.Author, entry, res.Text).String()

	summary.Source = string(res.Source)
	summary.CredoKey = entry.Key
	summary.Attempts = len(res.Attempts)
	logger.Info("report generated",
		"credo", entry.Key,
		"source", res.Source,
		"attempts", len(res.Attempts),
		"length", textpolicy.Len(res.Text),
	)
	logger.Debug("report text", "message", msg)

	if opts.dryRun {
		if err := (&delivery.Writer{W: stdout, Banner: true}).Deliver(ctx, msg); err != nil {
			return err
		}
		summary.Status = outcome.StatusDryRun
		logger.Info("dry run complete", "status", summary.Status)
		return nil
	}

	deliverer, err := newDeliverer(cfg, stdout, logger)
	if err != nil {
		return fmt.Errorf("delivery: %w", err)
	}
	summary.Deliverer = deliverer.Name()

	if err := deliver(ctx, cfg, deliverer, msg, summary.Date, runID, opts.force, logger); err != nil {
		if errors.Is(err, ledger.ErrAlreadyDelivered) {
			logger.Warn("report already delivered for this date, not posting again",
				"date", summary.Date, "hint", "use -force to post anyway")
			summary.Status = outcome.StatusDuplicate
			finish(summary)
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("interrupted during delivery: %w", err)
		}
		summary.Status = outcome.StatusFailed
		summary.Error = err.Error()
		finish(summary)
		return fmt.Errorf("deliver via %s: %w", deliverer.Name(), err)
	}

	summary.Status = outcome.StatusDelivered
	logger.Info("report delivered", "via", deliverer.Name(), "elapsed", time.Since(start).Round(time.Millisecond))
	finish(summary)
	return nil
}

// deliver hands msg to d, bracketing external channels with the ledger so
// a second run on the same date does not post twice. An interrupted
// delivery stays marked as sending: it may have gone out, so it is never
// retried automatically.
func deliver(ctx context.Context, cfg *config.Config, d delivery.Deliverer, msg, date, runID string, force bool, logger *slog.Logger) error {
	if !guarded(d) {
		return d.Deliver(ctx, msg)
	}

	led, err := ledger.Open(filepath.Join(cfg.DataDir, ledgerFile))
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()

	if err := led.Begin(ctx, date, runID, d.Name(), force); err != nil {
		return err
	}

	sendErr := d.Deliver(ctx, msg)
	if sendErr != nil && ctx.Err() != nil {
		return sendErr
	}

	status := ledger.StatusDelivered
	if sendErr != nil {
		status = ledger.StatusFailed
	}
	finCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerDeadline)
	defer cancel()
	if err := led.Finish(finCtx, date, runID, status); err != nil {
		logger.Error("ledger update failed", "status", status, "error", err)
	}
	return sendErr
}

// publishOutcome exports the summary to the metrics textfile and MQTT
// when configured. Failures are logged; the run result stands.
func publishOutcome(ctx context.Context, cfg *config.Config, s outcome.Summary, logger *slog.Logger) {
	level := slog.LevelDebug
	if !s.OK() {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "run summary", "status", s.Status, "reason", s.Reason, "duration", s.Duration)

	if path := cfg.Metrics.TextfilePath; path != "" {
		m := metrics.New()
		m.Observe(s)
		if err := m.WriteTextfile(path); err != nil {
			logger.Warn("metrics export failed", "path", path, "error", err)
		}
	}

	if !cfg.MQTT.Configured() {
		return
	}
	id, err := mqtt.LoadOrCreateInstanceID(cfg.DataDir)
	if err != nil {
		logger.Warn("mqtt instance id unavailable", "error", err)
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := mqtt.New(cfg.MQTT, id, logger).Publish(pubCtx, s); err != nil {
		logger.Warn("run summary not published", "error", err)
	}
}

func newRunID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
