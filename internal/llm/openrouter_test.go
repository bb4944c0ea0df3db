package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	tests := []struct {
		name      string
		cfg       OpenRouterConfig
		wantModel string
		wantErr   bool
	}{
		{"default base URL", OpenRouterConfig{APIKey: "sk-or-test", Model: "google/gemini-2.0-flash-exp"}, "google/gemini-2.0-flash-exp", false},
		// Model IDs are not mapped through the friendly-name table.
		{"model pass-through", OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-3-haiku"}, "anthropic/claude-3-haiku", false},
		{"custom base URL", OpenRouterConfig{APIKey: "sk-or-test", Model: "meta-llama/llama-3-8b", BaseURL: "https://custom.openrouter.example/v1"}, "meta-llama/llama-3-8b", false},
		{"empty API key", OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenRouterProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ModelID() != tt.wantModel {
				t.Errorf("model = %q, want %q", p.ModelID(), tt.wantModel)
			}
		})
	}
}

func TestOpenRouterProvider_SendsTitleHeader(t *testing.T) {
	var title, model string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("X-Title")
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		model = body.Model

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "gen-1",
			"object": "chat.completion",
			"model":  body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": `[{"answer":"C"}]`},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "gpt-4o-mini", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "Solve."}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != openRouterTitle {
		t.Errorf("X-Title = %q, want %q", title, openRouterTitle)
	}
	// OpenAI friendly names are not resolved for OpenRouter.
	if model != "gpt-4o-mini" {
		t.Errorf("model = %q, want it passed through", model)
	}
}
