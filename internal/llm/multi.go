package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider names.
const (
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// MultiClient routes requests to a provider based on model name.
type MultiClient struct {
	clients  map[string]Client // provider name → client
	models   map[string]string // model name → provider name
	fallback Client
}

// NewMultiClient creates a router. fallback serves models that match no
// registered or recognisable provider.
func NewMultiClient(fallback Client) *MultiClient {
	return &MultiClient{
		clients:  make(map[string]Client),
		models:   make(map[string]string),
		fallback: fallback,
	}
}

// AddProvider registers a client for a provider name.
func (m *MultiClient) AddProvider(name string, client Client) {
	m.clients[name] = client
}

// AddModel maps a model name to a provider.
func (m *MultiClient) AddModel(model, provider string) {
	m.models[model] = provider
}

// ProviderFor guesses the provider from a model name. Hosted model
// families have recognisable prefixes; everything else is assumed local.
func ProviderFor(model string) string {
	switch {
	case strings.HasPrefix(model, "claude"):
		return ProviderAnthropic
	case strings.HasPrefix(model, "gemini"):
		return ProviderGemini
	default:
		return ProviderOllama
	}
}

func (m *MultiClient) clientFor(model string) Client {
	provider, ok := m.models[model]
	if !ok {
		provider = ProviderFor(model)
	}
	if client, ok := m.clients[provider]; ok {
		return client
	}
	return m.fallback
}

// Complete sends the request to the provider that owns req.Model.
func (m *MultiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	client := m.clientFor(req.Model)
	if client == nil {
		return nil, fmt.Errorf("no provider configured for model %q", req.Model)
	}
	return client.Complete(ctx, req)
}

// Ping checks the fallback provider.
func (m *MultiClient) Ping(ctx context.Context) error {
	if m.fallback == nil {
		return fmt.Errorf("no fallback client configured")
	}
	return m.fallback.Ping(ctx)
}

// PingModel checks the provider that would serve model.
func (m *MultiClient) PingModel(ctx context.Context, model string) error {
	client := m.clientFor(model)
	if client == nil {
		return fmt.Errorf("no provider configured for model %q", model)
	}
	return client.Ping(ctx)
}
