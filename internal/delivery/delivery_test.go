package delivery

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

const sample = "【クレド報告】\nテスト\n＜クレドバリュー＞\n1. 心を込めて\n＜気づき＞\n気づき：今日は小さな改善に気づいた。"

func TestWriter_Plain(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{W: &buf}
	if err := w.Deliver(context.Background(), sample); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if got := buf.String(); got != sample+"\n" {
		t.Errorf("output = %q", got)
	}
	if w.Name() != "stdout" {
		t.Errorf("Name() = %q, want stdout", w.Name())
	}
}

func TestWriter_Banner(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{W: &buf, Banner: true}
	if err := w.Deliver(context.Background(), sample); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	rule := strings.Repeat("=", 40)
	if lines[0] != rule || lines[len(lines)-1] != rule {
		t.Errorf("banner missing:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "気づき：今日は") {
		t.Errorf("message body missing:\n%s", buf.String())
	}
	if w.Name() != "dry-run" {
		t.Errorf("Name() = %q, want dry-run", w.Name())
	}
}

func TestWriter_CancelledContext(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (&Writer{W: &buf}).Deliver(ctx, sample)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Deliver() = %v, want context.Canceled", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written after cancellation")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_WriteError(t *testing.T) {
	err := (&Writer{W: failingWriter{}}).Deliver(context.Background(), sample)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Deliver() = %v, want wrapped write error", err)
	}
}
