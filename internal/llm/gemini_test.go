package llm

import (
	"errors"
	"io"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{"type": "string"},
			"index":  map[string]any{"type": "integer"},
			"choice": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			"blanks": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
		},
		"required": []any{"answer", "index"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["answer"].Type != "STRING" {
		t.Fatalf("expected STRING for answer, got %s", schema.Properties["answer"].Type)
	}
	if schema.Properties["index"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for index, got %s", schema.Properties["index"].Type)
	}
	if len(schema.Properties["choice"].Enum) != 3 {
		t.Fatalf("expected 3 choices, got %d", len(schema.Properties["choice"].Enum))
	}
	if schema.Properties["blanks"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for blanks, got %s", schema.Properties["blanks"].Type)
	}
	if schema.Properties["blanks"].Items.Type != "INTEGER" {
		t.Fatalf("expected INTEGER for blanks items, got %s", schema.Properties["blanks"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGeminiChunks(t *testing.T) {
	stopped := false
	seq := func(yield func(*genai.GenerateContentResponse, error) bool) {
		defer func() { stopped = true }()
		if !yield(textResponse(`[{"answer":`), nil) {
			return
		}
		if !yield(&genai.GenerateContentResponse{}, nil) {
			return
		}
		last := textResponse(`"C"}]`)
		last.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount: 20, CandidatesTokenCount: 6, TotalTokenCount: 26,
		}
		yield(last, nil)
	}

	c := newGeminiChunks(seq)
	var got string
	for {
		chunk, err := c.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		got += chunk
	}
	c.Close()

	if got != `[{"answer":"C"}]` {
		t.Fatalf("unexpected text %q", got)
	}
	if u := c.Usage(); u.InputTokens != 20 || u.OutputTokens != 6 {
		t.Fatalf("unexpected usage %+v", u)
	}
	if !stopped {
		t.Fatal("iterator not finished")
	}
}

func TestGeminiChunks_MapsErrors(t *testing.T) {
	seq := func(yield func(*genai.GenerateContentResponse, error) bool) {
		yield(nil, &genai.APIError{Code: http.StatusTooManyRequests, Message: "quota"})
	}
	c := newGeminiChunks(seq)
	defer c.Close()

	_, err := c.Recv()
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
	}
	var si *ErrStreamInterrupted
	if !errors.As(err, &si) || si.Chunks != 0 {
		t.Errorf("expected an interruption before any chunk, got %v", err)
	}
}
