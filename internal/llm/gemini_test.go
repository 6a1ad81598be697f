package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "日々の小さな差を大切にする。"}]}}],
			"usageMetadata": {"promptTokenCount": 30, "candidatesTokenCount": 12}
		}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(t.Context(), "test-key", srv.URL, nil)
	if err != nil {
		t.Fatalf("NewGeminiClient error: %v", err)
	}
	resp, err := c.Complete(t.Context(), Request{
		Model:    "gemini-2.0-flash",
		Prompt:   "書いてください",
		Sampling: Sampling{Temperature: 0.7, TopP: 0.9, MaxTokens: 128},
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if resp.Text != "日々の小さな差を大切にする。" {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.InputTokens != 30 || resp.OutputTokens != 12 {
		t.Errorf("usage = %d/%d", resp.InputTokens, resp.OutputTokens)
	}

	gen, _ := body["generationConfig"].(map[string]any)
	if gen["maxOutputTokens"] != float64(128) {
		t.Errorf("maxOutputTokens = %v, want 128", gen["maxOutputTokens"])
	}
}
