package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nugget/credo-bot/internal/httpkit"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com"
	anthropicAPIVersion = "2023-06-01"
	// anthropicMaxTokens applies when the request leaves MaxTokens unset;
	// the API requires a value.
	anthropicMaxTokens = 256
)

// AnthropicClient uses the Anthropic Messages API.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey string, logger *slog.Logger) *AnthropicClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnthropicClient{
		apiKey:     apiKey,
		baseURL:    anthropicBaseURL,
		httpClient: httpkit.NewClient(httpkit.WithTimeout(0)),
		logger:     logger.With("provider", "anthropic"),
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	TopP        *float64           `json:"top_p,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *AnthropicClient) header() http.Header {
	h := http.Header{}
	h.Set("x-api-key", c.apiKey)
	h.Set("anthropic-version", anthropicAPIVersion)
	return h
}

// Complete sends a single user message.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (*Response, error) {
	body := anthropicRequest{
		Model:     req.Model,
		System:    req.System,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: req.Sampling.MaxTokens,
	}
	if body.MaxTokens <= 0 {
		body.MaxTokens = anthropicMaxTokens
	}
	if t := req.Sampling.Temperature; t > 0 {
		body.Temperature = &t
	}
	if p := req.Sampling.TopP; p > 0 {
		body.TopP = &p
	}

	c.logger.Log(ctx, LevelTrace, "messages request", "model", req.Model, "prompt", req.Prompt)

	start := time.Now()
	var out anthropicResponse
	if err := httpkit.DoJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/v1/messages", c.header(), body, &out); err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	c.logger.Log(ctx, LevelTrace, "messages response",
		"model", out.Model, "stop_reason", out.StopReason, "text", text.String())

	return &Response{
		Model:        out.Model,
		Text:         text.String(),
		InputTokens:  out.Usage.InputTokens,
		OutputTokens: out.Usage.OutputTokens,
		Duration:     time.Since(start),
	}, nil
}

// Ping lists models, which verifies the API key without spending tokens.
func (c *AnthropicClient) Ping(ctx context.Context) error {
	if err := httpkit.DoJSON(ctx, c.httpClient, http.MethodGet, c.baseURL+"/v1/models?limit=1", c.header(), nil, nil); err != nil {
		return fmt.Errorf("anthropic ping: %w", err)
	}
	return nil
}
