package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

const smtpDialTimeout = 30 * time.Second

// SMTPConfig holds outbound mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// StartTLS upgrades a plain connection; otherwise TLS is used from
	// the first byte.
	StartTLS bool
}

// Config describes one email delivery target.
type Config struct {
	From    string
	To      []string
	Subject string
	SMTP    SMTPConfig
}

type sendFunc func(ctx context.Context, cfg SMTPConfig, from string, recipients []string, msg []byte) error

// Sender delivers reports by email.
type Sender struct {
	cfg    Config
	logger *slog.Logger
	send   sendFunc
}

// NewSender returns a Sender for cfg.
func NewSender(cfg Config, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{cfg: cfg, logger: logger, send: SendMail}
}

// Name implements delivery.Deliverer.
func (s *Sender) Name() string { return "email" }

// Deliver composes message into a mail and sends it to every recipient.
func (s *Sender) Deliver(ctx context.Context, message string) error {
	msg, err := ComposeMessage(ComposeOptions{
		From:    s.cfg.From,
		To:      s.cfg.To,
		Subject: s.cfg.Subject,
		Body:    message,
	})
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}

	from, err := bareAddress(s.cfg.From)
	if err != nil {
		return err
	}
	rcpts, err := collectRecipients(s.cfg.To)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := s.send(ctx, s.cfg.SMTP, from, rcpts, msg); err != nil {
		return fmt.Errorf("send via %s: %w", s.cfg.SMTP.Host, err)
	}
	s.logger.Info("report mailed",
		"host", s.cfg.SMTP.Host,
		"recipients", len(rcpts),
		"bytes", len(msg),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// SendMail connects to the SMTP server, authenticates when credentials
// are set, and delivers msg. Each call uses its own connection.
func SendMail(ctx context.Context, cfg SMTPConfig, from string, recipients []string, msg []byte) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	dialTimeout := smtpDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < dialTimeout {
			dialTimeout = remaining
		}
	}
	dialer := &net.Dialer{Timeout: dialTimeout}

	var conn net.Conn
	var err error
	if cfg.StartTLS {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: cfg.Host})
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("create SMTP client on %s: %w", addr, err)
	}
	defer client.Close()

	if err := client.Hello("localhost"); err != nil {
		return fmt.Errorf("EHLO: %w", err)
	}
	if cfg.StartTLS {
		if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
			return fmt.Errorf("STARTTLS: %w", err)
		}
	}
	if cfg.Username != "" && cfg.Password != "" {
		auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("AUTH: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close DATA: %w", err)
	}
	return client.Quit()
}

// collectRecipients returns the unique bare addresses of to.
func collectRecipients(to []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	for _, a := range to {
		bare, err := bareAddress(a)
		if err != nil {
			return nil, err
		}
		if !seen[bare] {
			seen[bare] = true
			result = append(result, bare)
		}
	}
	return result, nil
}
