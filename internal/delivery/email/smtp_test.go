package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCollectRecipients(t *testing.T) {
	got, err := collectRecipients([]string{
		"Alice <alice@example.com>",
		"bob@example.com",
		"alice@example.com",
	})
	if err != nil {
		t.Fatalf("collectRecipients() error: %v", err)
	}
	want := []string{"alice@example.com", "bob@example.com"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("recipients mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectRecipients_Invalid(t *testing.T) {
	if _, err := collectRecipients([]string{"Alice <alice"}); err == nil {
		t.Error("expected a parse error")
	}
}

type capture struct {
	cfg   SMTPConfig
	from  string
	rcpts []string
	msg   []byte
	err   error
}

func (c *capture) send(_ context.Context, cfg SMTPConfig, from string, rcpts []string, msg []byte) error {
	c.cfg, c.from, c.rcpts, c.msg = cfg, from, rcpts, msg
	return c.err
}

func testSender(c *capture) *Sender {
	s := NewSender(Config{
		From:    "Credo Bot <bot@example.com>",
		To:      []string{"Team <team@example.com>"},
		Subject: "【クレド報告】",
		SMTP:    SMTPConfig{Host: "smtp.example.com", Port: 587, StartTLS: true},
	}, nil)
	s.send = c.send
	return s
}

func TestSender_Deliver(t *testing.T) {
	c := &capture{}
	s := testSender(c)

	if err := s.Deliver(context.Background(), report); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if c.from != "bot@example.com" {
		t.Errorf("envelope from = %q", c.from)
	}
	if diff := cmp.Diff([]string{"team@example.com"}, c.rcpts); diff != "" {
		t.Errorf("envelope recipients (-want +got):\n%s", diff)
	}
	if c.cfg.Host != "smtp.example.com" {
		t.Errorf("smtp host = %q", c.cfg.Host)
	}
	pm := parse(t, c.msg)
	if !strings.Contains(pm.parts["text/plain"], "気づき：今日は") {
		t.Error("composed message lacks the report body")
	}
	if s.Name() != "email" {
		t.Errorf("Name() = %q", s.Name())
	}
}

func TestSender_DeliverError(t *testing.T) {
	c := &capture{err: errors.New("connection refused")}
	err := testSender(c).Deliver(context.Background(), report)
	if err == nil || !strings.Contains(err.Error(), "smtp.example.com") {
		t.Errorf("Deliver() = %v, want error naming the host", err)
	}
}
