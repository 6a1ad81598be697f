// Package delivery defines where a finished report goes. Concrete
// channels live in subpackages; this package holds the interface and the
// plain writer used for stdout delivery and dry runs.
package delivery

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Deliverer hands one finished report to a channel. A Deliverer must not
// retry on its own: a partially sent message cannot be told apart from a
// complete one, so a failed delivery is reported and left alone.
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, message string) error
}

const bannerWidth = 40

// Writer prints the report to an io.Writer. With Banner set the message
// is framed by rules so a dry run is easy to spot in a cron log.
type Writer struct {
	W      io.Writer
	Banner bool
}

// Name implements Deliverer.
func (w *Writer) Name() string {
	if w.Banner {
		return "dry-run"
	}
	return "stdout"
}

// Deliver implements Deliverer.
func (w *Writer) Deliver(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var b strings.Builder
	if w.Banner {
		rule := strings.Repeat("=", bannerWidth)
		b.WriteString(rule + "\n")
		b.WriteString(message)
		b.WriteString("\n" + rule + "\n")
	} else {
		b.WriteString(message + "\n")
	}
	if _, err := io.WriteString(w.W, b.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
