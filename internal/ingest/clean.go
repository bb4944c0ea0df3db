package ingest

import (
	"bytes"
	"encoding/json"

	"github.com/abhisek/examlens/internal/sanitize"
)

// blockFields hold multi-paragraph model text and get the passage profile.
// Every other string gets the inline profile.
var blockFields = map[string]bool{
	"explanation": true,
	"translation": true,
	"passage":     true,
	"analysis":    true,
}

// cleanAnswer sanitizes every string inside a decoded answer and returns
// the re-encoded object with its fields. Values that are not JSON objects
// are sanitized in place and come back with nil fields.
func cleanAnswer(raw json.RawMessage) (json.RawMessage, map[string]any) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw, nil
	}
	v = cleanValue(v, sanitize.Inline)

	out, err := encode(v)
	if err != nil {
		return raw, nil
	}
	fields, _ := v.(map[string]any)
	return out, fields
}

func cleanValue(v any, profile sanitize.Profile) any {
	switch t := v.(type) {
	case string:
		return sanitize.Sanitize(t, profile)
	case map[string]any:
		for k, val := range t {
			p := sanitize.Inline
			if blockFields[k] {
				p = sanitize.Passage
			}
			t[k] = cleanValue(val, p)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = cleanValue(val, profile)
		}
		return t
	}
	return v
}

// encode marshals without HTML escaping; the text is already sanitized.
func encode(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
