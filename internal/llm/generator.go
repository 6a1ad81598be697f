package llm

import (
	"context"
	"fmt"
	"time"
)

// Generator binds a client to one model and bounds each call with a
// timeout. A nil Generator, or one without a client or model, reports
// ErrNotConfigured.
type Generator struct {
	Client  Client
	Model   string
	Timeout time.Duration
}

// Generate fills in the model and returns only the reply text.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if g == nil || g.Client == nil || g.Model == "" {
		return "", ErrNotConfigured
	}
	req.Model = g.Model
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	resp, err := g.Client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("%s: empty response", g.Model)
	}
	return resp.Text, nil
}
