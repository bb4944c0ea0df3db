package ingest

import "github.com/abhisek/examlens/internal/llm"

// AnswerSchema defines one element of the streamed answer array.
var AnswerSchema = &llm.Schema{
	Name:        "exam-answer",
	Description: "The answer to one exam question or one numbered blank",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"index": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"description": "1-based question or blank number",
			},
			"answer": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The option letter for choice questions, otherwise the answer text",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the answer is correct, for a student",
			},
			"translation": map[string]any{
				"type":        "string",
				"description": "Optional translation of the question or passage",
			},
		},
		"required": []any{"index", "answer", "explanation"},
	},
}
