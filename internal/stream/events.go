// Package stream turns a chunked completion stream into question events.
//
// The extractor buffers chunks and emits a question as soon as the buffer
// holds a syntactically complete array element. Partial JSON is never
// surfaced. Each stream ends with exactly one complete or error event.
package stream

import "encoding/json"

// Event is one item of the extractor's output sequence. The concrete types
// are StatusEvent, TextEvent, QuestionEvent, CompleteEvent and ErrorEvent.
type Event interface {
	// Type is the SSE event tag.
	Type() string
	isEvent()
}

// StatusEvent reports pipeline progress.
type StatusEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// TextEvent carries one raw chunk for progress display. It is emitted only
// when Config.EmitText is set and is never a finished structure.
type TextEvent struct {
	Chunk string `json:"chunk"`
}

// QuestionEvent carries one fully decoded array element.
type QuestionEvent struct {
	// Index is the 0-based position of the element in the answer array.
	Index    int             `json:"index"`
	Question json.RawMessage `json:"question"`

	// Invalid is set by callers that validate the decoded element.
	Invalid string `json:"invalid,omitempty"`
}

// CompleteEvent ends a successful stream.
type CompleteEvent struct {
	Answers   []json.RawMessage `json:"answers"`
	Passage   string            `json:"passage,omitempty"`
	Questions []string          `json:"questions,omitempty"`
	GroupID   string            `json:"groupId,omitempty"`
	Expected  int               `json:"expected,omitempty"`
}

// ErrorEvent ends a failed stream. Buffer is a bounded preview, never the
// full buffer.
type ErrorEvent struct {
	Message string `json:"message"`
	Buffer  string `json:"buffer,omitempty"`
}

func (StatusEvent) Type() string   { return "status" }
func (TextEvent) Type() string     { return "text" }
func (QuestionEvent) Type() string { return "question" }
func (CompleteEvent) Type() string { return "complete" }
func (ErrorEvent) Type() string    { return "error" }

func (StatusEvent) isEvent()   {}
func (TextEvent) isEvent()     {}
func (QuestionEvent) isEvent() {}
func (CompleteEvent) isEvent() {}
func (ErrorEvent) isEvent()    {}

// IsTerminal reports whether e ends a stream.
func IsTerminal(e Event) bool {
	switch e.(type) {
	case CompleteEvent, ErrorEvent:
		return true
	}
	return false
}
