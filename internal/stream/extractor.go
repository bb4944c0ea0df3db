package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Context is caller data echoed back on the complete event.
type Context struct {
	Passage   string
	Questions []string
	GroupID   string

	// Expected is the number of questions the caller asked for. Zero means
	// unknown.
	Expected int
}

// Config holds the extractor's tunables.
type Config struct {
	// ErrorPreviewLength bounds the buffer preview on an error event, in
	// runes.
	ErrorPreviewLength int

	// EmitText surfaces each raw chunk as a TextEvent.
	EmitText bool
}

// DefaultConfig returns the defaults.
func DefaultConfig() Config {
	return Config{ErrorPreviewLength: 200}
}

// Extractor turns a ChunkSource into an event sequence.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an Extractor. A non-positive preview length takes
// the default.
func NewExtractor(cfg Config) *Extractor {
	if cfg.ErrorPreviewLength <= 0 {
		cfg.ErrorPreviewLength = DefaultConfig().ErrorPreviewLength
	}
	return &Extractor{cfg: cfg}
}

// Run consumes src and yields events. Question events arrive in index order,
// each index at most once, and the last event is always a CompleteEvent or
// an ErrorEvent. Breaking out of the loop stops consumption and closes src.
func (x *Extractor) Run(ctx context.Context, src ChunkSource, sc Context) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		defer src.Close()
		r := &run{x: x, ctx: sc, scan: NewArrayScanner(), yield: yield, start: -1}

		if !yield(StatusEvent{Stage: "streaming", Message: "waiting for model output"}) {
			return
		}

		for {
			if err := ctx.Err(); err != nil {
				r.fail(fmt.Errorf("stream cancelled: %w", err))
				return
			}
			chunk, err := src.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				r.fail(fmt.Errorf("upstream stream failed: %w", err))
				return
			}
			if chunk == "" {
				continue
			}
			r.buf.WriteString(chunk)
			if x.cfg.EmitText && !yield(TextEvent{Chunk: chunk}) {
				return
			}
			if !r.speculate() {
				return
			}
		}
		r.finish()
	}
}

// run is the per-stream state. Nothing here is shared between streams.
type run struct {
	x     *Extractor
	ctx   Context
	scan  *ArrayScanner
	buf   strings.Builder
	yield func(Event) bool

	emitted int // watermark: next question index to emit
	start   int // scanner offset after the last decoded element, -1 before the first
	misses  int // swallowed speculative decode failures
	stopped bool
}

// speculate decodes the elements that closed since the last attempt. A
// closed array that yielded nothing is prose, such as "[see below]", and the
// scanner restarts after it. It returns false once the consumer has stopped.
func (r *run) speculate() bool {
	buf := r.buf.String()
	for {
		if r.scan.Feed(buf) > 0 && !r.decodeFresh(buf) {
			return false
		}
		if !r.scan.Closed() || r.start >= 0 {
			return true
		}
		r.scan = r.scan.Restart()
	}
}

// decodeFresh emits the elements between the last decoded offset and the
// newest complete element. A decode failure is swallowed and retried on the
// next chunk.
func (r *run) decodeFresh(buf string) bool {
	arrStart, _, ok := r.scan.Span()
	if !ok {
		return true
	}
	from := r.start
	if from < 0 {
		from = arrStart + 1
	}
	last := r.scan.Elements() - 1
	to := r.scan.ElementEnd(last)

	seg := strings.TrimLeft(buf[from:to], " \t\r\n,")
	var items []json.RawMessage
	if err := json.Unmarshal([]byte("["+seg+"]"), &items); err != nil {
		r.misses++
		return true
	}
	r.start = to
	for _, item := range items {
		if !r.emit(QuestionEvent{Index: r.emitted, Question: item}) {
			return false
		}
		r.emitted++
	}
	return true
}

func (r *run) emit(e Event) bool {
	if r.stopped {
		return false
	}
	if !r.yield(e) {
		r.stopped = true
		return false
	}
	return true
}

// finish runs the terminal parse after the source is exhausted.
func (r *run) finish() {
	buf := r.buf.String()
	answers, err := parseAnswers(buf)
	if err != nil {
		r.fail(err)
		return
	}
	if r.misses > 0 {
		zap.L().Debug("speculative decode failures", zap.Int("count", r.misses))
	}
	for r.emitted < len(answers) {
		if !r.emit(QuestionEvent{Index: r.emitted, Question: answers[r.emitted]}) {
			return
		}
		r.emitted++
	}
	r.emit(CompleteEvent{
		Answers:   answers,
		Passage:   r.ctx.Passage,
		Questions: r.ctx.Questions,
		GroupID:   r.ctx.GroupID,
		Expected:  r.ctx.Expected,
	})
}

func (r *run) fail(err error) {
	preview := Preview(r.buf.String(), r.x.cfg.ErrorPreviewLength)
	zap.L().Warn("stream extraction failed",
		zap.Error(err),
		zap.Int("buffered", r.buf.Len()),
		zap.Int("emitted", r.emitted),
	)
	r.emit(ErrorEvent{Message: err.Error(), Buffer: preview})
}

// parseAnswers decodes the final buffer. Candidates are tried in order: the
// trimmed buffer, the buffer without code fences, the first fenced block
// anywhere in the buffer, each closed array holding only objects, and the
// span from the first '[' to the last ']'.
func parseAnswers(buf string) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(buf)
	if trimmed == "" {
		return nil, fmt.Errorf("empty model output")
	}
	candidates := []string{trimmed, StripCodeFences(trimmed), fencedBlock(trimmed)}
	for _, arr := range closedArrays(trimmed) {
		if objectArray(arr) {
			candidates = append(candidates, arr)
		}
	}
	candidates = append(candidates, extractArrayCandidate(trimmed))

	var lastErr error
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}

		var answers []json.RawMessage
		if err := json.Unmarshal([]byte(c), &answers); err != nil {
			lastErr = err
			continue
		}
		return answers, nil
	}
	return nil, fmt.Errorf("decode answer array: %w", lastErr)
}

// objectArray reports whether arr decodes to a non-empty array of objects.
func objectArray(arr string) bool {
	var items []json.RawMessage
	if json.Unmarshal([]byte(arr), &items) != nil || len(items) == 0 {
		return false
	}
	for _, it := range items {
		if len(it) == 0 || it[0] != '{' {
			return false
		}
	}
	return true
}

// Preview returns at most n runes of s, marking truncation with "...".
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

// Collect drains seq into a slice.
func Collect(seq iter.Seq[Event]) []Event {
	var out []Event
	for e := range seq {
		out = append(out, e)
	}
	return out
}
