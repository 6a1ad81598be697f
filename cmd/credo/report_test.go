package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/nugget/credo-bot/internal/config"
	"github.com/nugget/credo-bot/internal/delivery"
	"github.com/nugget/credo-bot/internal/ledger"
)

// fakeChannel records what it was asked to post.
type fakeChannel struct {
	posts []string
	err   error
}

func (f *fakeChannel) Name() string { return "fake" }

func (f *fakeChannel) Deliver(_ context.Context, msg string) error {
	f.posts = append(f.posts, msg)
	return f.err
}

func ledgerStatus(t *testing.T, cfg *config.Config, date string) ledger.Status {
	t.Helper()
	led, err := ledger.Open(filepath.Join(cfg.DataDir, ledgerFile))
	if err != nil {
		t.Fatal(err)
	}
	defer led.Close()
	r, ok, err := led.Get(t.Context(), date)
	if err != nil || !ok {
		t.Fatalf("ledger record for %s: %v, %v", date, ok, err)
	}
	return r.Status
}

func TestDeliver_LedgerGuard(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}
	ctx := t.Context()
	ch := &fakeChannel{}
	logger := slog.New(slog.DiscardHandler)

	if err := deliver(ctx, cfg, ch, "one", weekday, "run-1", false, logger); err != nil {
		t.Fatalf("first deliver: %v", err)
	}
	if got := ledgerStatus(t, cfg, weekday); got != ledger.StatusDelivered {
		t.Errorf("status = %q, want delivered", got)
	}

	err := deliver(ctx, cfg, ch, "two", weekday, "run-2", false, logger)
	if !errors.Is(err, ledger.ErrAlreadyDelivered) {
		t.Fatalf("second deliver = %v, want ErrAlreadyDelivered", err)
	}
	if len(ch.posts) != 1 {
		t.Errorf("posts = %d, want 1", len(ch.posts))
	}

	if err := deliver(ctx, cfg, ch, "three", weekday, "run-3", true, logger); err != nil {
		t.Fatalf("forced deliver: %v", err)
	}
	if len(ch.posts) != 2 || ch.posts[1] != "three" {
		t.Errorf("posts = %q", ch.posts)
	}
}

func TestDeliver_FailureAllowsRetry(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}
	logger := slog.New(slog.DiscardHandler)
	ch := &fakeChannel{err: errors.New("room not found")}

	if err := deliver(t.Context(), cfg, ch, "msg", weekday, "run-1", false, logger); err == nil {
		t.Fatal("expected the channel error")
	}
	if got := ledgerStatus(t, cfg, weekday); got != ledger.StatusFailed {
		t.Errorf("status = %q, want failed", got)
	}

	ch.err = nil
	if err := deliver(t.Context(), cfg, ch, "msg", weekday, "run-2", false, logger); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := ledgerStatus(t, cfg, weekday); got != ledger.StatusDelivered {
		t.Errorf("status = %q, want delivered", got)
	}
}

// interruptingChannel cancels the run mid-post.
type interruptingChannel struct{ cancel context.CancelFunc }

func (c *interruptingChannel) Name() string { return "fake" }

func (c *interruptingChannel) Deliver(ctx context.Context, _ string) error {
	c.cancel()
	return ctx.Err()
}

func TestDeliver_InterruptLeavesSending(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	err := deliver(ctx, cfg, &interruptingChannel{cancel: cancel}, "msg", weekday, "run-1", false, slog.New(slog.DiscardHandler))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("deliver = %v, want context.Canceled", err)
	}
	if got := ledgerStatus(t, cfg, weekday); got != ledger.StatusSending {
		t.Errorf("status = %q, want sending", got)
	}
}

func TestDeliver_StdoutBypassesLedger(t *testing.T) {
	cfg := &config.Config{DataDir: filepath.Join(t.TempDir(), "db")}
	var buf bytes.Buffer
	w := &delivery.Writer{W: &buf}
	for range 2 {
		if err := deliver(t.Context(), cfg, w, "msg", weekday, "run", false, slog.New(slog.DiscardHandler)); err != nil {
			t.Fatalf("deliver: %v", err)
		}
	}
	if buf.String() != "msg\nmsg\n" {
		t.Errorf("output = %q", buf.String())
	}
	if _, err := os.Stat(cfg.DataDir); err == nil {
		t.Error("stdout delivery should not create the ledger")
	}
}

func TestNewDeliverer(t *testing.T) {
	cfg := config.Default()
	logger := slog.New(slog.DiscardHandler)

	d, err := newDeliverer(cfg, &bytes.Buffer{}, logger)
	if err != nil || d.Name() != "stdout" {
		t.Errorf("stdout deliverer = %v, %v", d, err)
	}

	cfg.Delivery.Kind = "email"
	cfg.Delivery.Email.From = "credo@example.com"
	cfg.Delivery.Email.To = []string{"team@example.com"}
	cfg.Delivery.Email.SMTP.Host = "smtp.example.com"
	if d, err = newDeliverer(cfg, nil, logger); err != nil || d.Name() != "email" {
		t.Errorf("email deliverer = %v, %v", d, err)
	}

	cfg.Delivery.Kind = "lineworks"
	cfg.Delivery.LineWorks.ID = "bot@example"
	cfg.Delivery.LineWorks.Password = "secret"
	cfg.Delivery.LineWorks.Room = "朝会"
	if d, err = newDeliverer(cfg, nil, logger); err != nil || d.Name() != "lineworks" {
		t.Errorf("lineworks deliverer = %v, %v", d, err)
	}
}

func TestNewBackend_Unconfigured(t *testing.T) {
	cfg := config.Default()
	if b := newBackend(t.Context(), cfg, slog.New(slog.DiscardHandler)); b != nil {
		t.Errorf("backend without a model = %v, want nil", b)
	}
}

func TestRunInit(t *testing.T) {
	old := syscall.Umask(0)
	t.Cleanup(func() { syscall.Umask(old) })

	dir := t.TempDir()
	var buf bytes.Buffer
	if err := runInit(&buf, dir); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	for name, perm := range map[string]os.FileMode{"config.yaml": 0o600, "skip_dates.txt": 0o644} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("%s not created: %v", name, err)
		}
		if info.Mode().Perm() != perm {
			t.Errorf("%s permissions = %o, want %o", name, info.Mode().Perm(), perm)
		}
	}
	if info, err := os.Stat(filepath.Join(dir, "db")); err != nil || !info.IsDir() {
		t.Errorf("db directory missing: %v", err)
	}

	// The written example must load and validate as is.
	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("load example config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("example config invalid: %v", err)
	}
}

func TestRunInit_KeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	os.WriteFile(cfgPath, []byte("log_level: warn\n"), 0o600)

	var buf bytes.Buffer
	if err := runInit(&buf, dir); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	data, _ := os.ReadFile(cfgPath)
	if string(data) != "log_level: warn\n" {
		t.Errorf("config.yaml overwritten: %q", data)
	}
	if !strings.Contains(buf.String(), "exists, skipping") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestHistory(t *testing.T) {
	cfgPath := workspace(t, "")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}

	out, _, err := runCapture(t, "-config", cfgPath, "history")
	if err != nil {
		t.Fatalf("history error: %v", err)
	}
	if out != "no deliveries recorded\n" {
		t.Errorf("empty history = %q", out)
	}

	ch := &fakeChannel{}
	if err := deliver(t.Context(), cfg, ch, "msg", weekday, "run-1", false, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatal(err)
	}

	out, _, err = runCapture(t, "-config", cfgPath, "-o", "json", "history")
	if err != nil {
		t.Fatalf("history error: %v", err)
	}
	var records []ledger.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(records) != 1 || records[0].Date != weekday || records[0].Status != ledger.StatusDelivered || records[0].Deliverer != "fake" {
		t.Errorf("history = %+v", records)
	}
}

func TestProbeBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"models":[{"name":"elyza:jp8b"},{"name":"llama3:latest"}]}`))
	}))
	defer srv.Close()

	tests := []struct {
		name  string
		url   string
		model string
		want  string
	}{
		{"installed", srv.URL, "elyza:jp8b", "model backend reachable"},
		{"latest tag", srv.URL, "llama3", "model backend reachable"},
		{"missing", srv.URL, "qwen2:7b", "model not installed"},
		{"unconfigured", srv.URL, "", "no model configured"},
		{"unreachable", "http://127.0.0.1:1", "elyza:jp8b", "model backend unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Models.OllamaURL = tt.url
			cfg.Models.Model = tt.model

			var buf bytes.Buffer
			probeBackend(t.Context(), cfg, slog.New(slog.NewTextHandler(&buf, nil)))
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("log = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
