package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // LLM events only; empty matches all
	GroupID string    // empty matches all
	Kind    string    // solve sessions only; a canonical kind
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	GroupID      string // solve session the call belongs to, if any
	Streamed     bool
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// UsageStats aggregates LLM calls by purpose.
type UsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM calls by model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// SolveSessionData records the outcome of one streamed solve.
type SolveSessionData struct {
	GroupID    string
	Subject    string
	Kind       string
	LegacyKind string

	// Expected is the question count derived from segmentation; Decoded is
	// the number of answers the stream produced.
	Expected int
	Decoded  int
	Invalid  int

	// Status is "complete" or "error".
	Status       string
	ErrorMessage string
	DurationMs   int64
}

// CountMismatch reports whether the stream decoded a different number of
// answers than were expected.
func (d SolveSessionData) CountMismatch() bool {
	return d.Expected > 0 && d.Expected != d.Decoded
}

// SolveSessionRecord is a stored solve session.
type SolveSessionRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Mismatch  bool
	SolveSessionData
}

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one event by ID, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]UsageStats, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// AppendSolveSession records the outcome of a solve stream.
	AppendSolveSession(ctx context.Context, data SolveSessionData) error

	// QuerySolveSessions returns solve sessions, newest first.
	QuerySolveSessions(ctx context.Context, opts QueryOpts) ([]SolveSessionRecord, error)
}
