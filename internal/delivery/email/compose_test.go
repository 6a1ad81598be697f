package email

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
)

const report = "【クレド報告】\n山田\n＜クレドバリュー＞\n1. 心を込めて\n＜気づき＞\n気づき：今日は小さな改善に気づいた。"

type parsedMessage struct {
	subject string
	from    []*mail.Address
	to      []*mail.Address
	parts   map[string]string
}

func parse(t *testing.T, raw []byte) parsedMessage {
	t.Helper()
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("CreateReader: %v", err)
	}
	var pm parsedMessage
	pm.subject, err = mr.Header.Subject()
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	pm.from, _ = mr.Header.AddressList("From")
	pm.to, _ = mr.Header.AddressList("To")
	pm.parts = make(map[string]string)
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("NextPart: %v", err)
		}
		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		body, err := io.ReadAll(p.Body)
		if err != nil {
			t.Fatalf("read %s part: %v", ct, err)
		}
		pm.parts[ct] = string(body)
	}
	return pm
}

func TestComposeMessage(t *testing.T) {
	raw, err := ComposeMessage(ComposeOptions{
		From:    "Credo Bot <bot@example.com>",
		To:      []string{"team@example.com", "Boss <boss@example.com>"},
		Subject: "【クレド報告】",
		Body:    report,
		Date:    time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("ComposeMessage() error: %v", err)
	}

	pm := parse(t, raw)
	if pm.subject != "【クレド報告】" {
		t.Errorf("subject = %q", pm.subject)
	}
	if len(pm.from) != 1 || pm.from[0].Address != "bot@example.com" {
		t.Errorf("from = %v", pm.from)
	}
	if len(pm.to) != 2 || pm.to[1].Address != "boss@example.com" {
		t.Errorf("to = %v", pm.to)
	}

	plain := strings.ReplaceAll(pm.parts["text/plain"], "\r\n", "\n")
	if plain != report {
		t.Errorf("plain part = %q, want the report verbatim", plain)
	}

	htmlPart := pm.parts["text/html"]
	if htmlPart == "" {
		t.Fatal("no html part")
	}
	if !strings.Contains(htmlPart, "<br") {
		t.Error("html part should keep line breaks")
	}
	if strings.Contains(htmlPart, "<ol") {
		t.Error("credo value line must not render as a list")
	}
	if !strings.Contains(htmlPart, "1. 心を込めて") {
		t.Errorf("html part lost the credo value line:\n%s", htmlPart)
	}
}

func TestComposeMessage_BadAddress(t *testing.T) {
	tests := []struct {
		name string
		opts ComposeOptions
	}{
		{"from", ComposeOptions{From: "not an address", To: []string{"a@example.com"}}},
		{"to", ComposeOptions{From: "a@example.com", To: []string{"@@"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComposeMessage(tt.opts); err == nil {
				t.Error("ComposeMessage() should reject the address")
			}
		})
	}
}

func TestLiteralMarkdown(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1. 心を込めて", `1\. 心を込めて`},
		{"# 見出し", `\# 見出し`},
		{"気づき：今日は。", "気づき：今日は。"},
		{"<b>", `\<b\>`},
	}
	for _, tt := range tests {
		if got := literalMarkdown(tt.in); got != tt.want {
			t.Errorf("literalMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
