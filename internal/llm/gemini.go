package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/nugget/credo-bot/internal/httpkit"
)

// GeminiClient uses the Gemini API through the official SDK.
type GeminiClient struct {
	client *genai.Client
	logger *slog.Logger
}

// NewGeminiClient creates a Gemini client. baseURL is only set in tests.
func NewGeminiClient(ctx context.Context, apiKey, baseURL string, logger *slog.Logger) (*GeminiClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpkit.NewClient(httpkit.WithTimeout(0)),
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, logger: logger.With("provider", "gemini")}, nil
}

// Complete sends one prompt through GenerateContent.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	gc := &genai.GenerateContentConfig{}
	if req.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if t := req.Sampling.Temperature; t > 0 {
		gc.Temperature = genai.Ptr(float32(t))
	}
	if p := req.Sampling.TopP; p > 0 {
		gc.TopP = genai.Ptr(float32(p))
	}
	if n := req.Sampling.MaxTokens; n > 0 {
		gc.MaxOutputTokens = int32(n)
	}

	c.logger.Log(ctx, LevelTrace, "generate content request", "model", req.Model, "prompt", req.Prompt)

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), gc)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	out := &Response{
		Model:    req.Model,
		Text:     resp.Text(),
		Duration: time.Since(start),
	}
	if u := resp.UsageMetadata; u != nil {
		out.InputTokens = int(u.PromptTokenCount)
		out.OutputTokens = int(u.CandidatesTokenCount)
	}

	c.logger.Log(ctx, LevelTrace, "generate content response", "model", req.Model, "text", out.Text)
	return out, nil
}

// Ping lists one model to verify the key.
func (c *GeminiClient) Ping(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1}); err != nil {
		return fmt.Errorf("gemini ping: %w", err)
	}
	return nil
}
