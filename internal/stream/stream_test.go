package stream

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questions(events []Event) []QuestionEvent {
	var out []QuestionEvent
	for _, e := range events {
		if q, ok := e.(QuestionEvent); ok {
			out = append(out, q)
		}
	}
	return out
}

func countType(events []Event, typ string) int {
	n := 0
	for _, e := range events {
		if e.Type() == typ {
			n++
		}
	}
	return n
}

func TestRun_ThreeBursts(t *testing.T) {
	src := NewStaticSource(
		`[{"number":1,"answer":"A"},`,
		`{"number":2,"answer":"B"},`,
		`{"number":3,"answer":"C"}]`,
	)
	events := Collect(NewExtractor(DefaultConfig()).Run(context.Background(), src, Context{GroupID: "g1", Passage: "p"}))

	qs := questions(events)
	require.Len(t, qs, 3)
	for i, q := range qs {
		assert.Equal(t, i, q.Index)
	}
	assert.JSONEq(t, `{"number":2,"answer":"B"}`, string(qs[1].Question))

	assert.Equal(t, 1, countType(events, "complete"))
	last, ok := events[len(events)-1].(CompleteEvent)
	require.True(t, ok, "last event is %T, want CompleteEvent", events[len(events)-1])
	assert.Len(t, last.Answers, 3)
	assert.Equal(t, "g1", last.GroupID)
	assert.Equal(t, "p", last.Passage)
	assert.True(t, src.IsClosed())
}

func TestRun_EmitsAsSoonAsElementCloses(t *testing.T) {
	src := NewStaticSource(`[{"a":"x`, `y"}`, `, {"a":`, `"z"}`, `]`)
	var seenAfter []int
	for e := range NewExtractor(DefaultConfig()).Run(context.Background(), src, Context{}) {
		if _, ok := e.(QuestionEvent); ok {
			seenAfter = append(seenAfter, src.Requested())
		}
	}
	assert.Equal(t, []int{2, 4}, seenAfter)
}

func TestRun_NeverValid(t *testing.T) {
	src := NewStaticSource("I cannot answer", " that right now. ", `[ {"a": `)
	events := Collect(NewExtractor(DefaultConfig()).Run(context.Background(), src, Context{}))

	assert.Equal(t, 1, countType(events, "error"))
	assert.Zero(t, countType(events, "question"))
	assert.Zero(t, countType(events, "complete"))
	errEv, ok := events[len(events)-1].(ErrorEvent)
	require.True(t, ok)
	assert.Contains(t, errEv.Buffer, "I cannot answer")
}

func TestRun_ErrorPreviewBounded(t *testing.T) {
	src := NewStaticSource(strings.Repeat("x", 1000))
	events := Collect(NewExtractor(Config{ErrorPreviewLength: 20}).Run(context.Background(), src, Context{}))
	errEv := events[len(events)-1].(ErrorEvent)
	assert.Equal(t, strings.Repeat("x", 20)+"...", errEv.Buffer)
}

func TestRun_CodeFences(t *testing.T) {
	src := NewStaticSource("```json\n", `[{"n":1},`, `{"n":2}]`, "\n```")
	events := Collect(NewExtractor(DefaultConfig()).Run(context.Background(), src, Context{}))
	assert.Len(t, questions(events), 2)
	_, ok := events[len(events)-1].(CompleteEvent)
	assert.True(t, ok)
}

func TestRun_ProseBracketBeforeFencedArray(t *testing.T) {
	src := NewStaticSource("Here are the answers [see below]:\n```json\n", `[{"n":1},`, `{"n":2}]`, "\n```")
	events := Collect(NewExtractor(DefaultConfig()).Run(context.Background(), src, Context{}))

	qs := questions(events)
	require.Len(t, qs, 2)
	assert.JSONEq(t, `{"n":1}`, string(qs[0].Question))
	assert.JSONEq(t, `{"n":2}`, string(qs[1].Question))

	done, ok := events[len(events)-1].(CompleteEvent)
	require.True(t, ok, "got %T", events[len(events)-1])
	assert.Len(t, done.Answers, 2)
}

func TestRun_EmptyProseBrackets(t *testing.T) {
	src := NewStaticSource("Options [] and [ ] aside: ", `[{"n":1}]`)
	events := Collect(NewExtractor(DefaultConfig()).Run(context.Background(), src, Context{}))
	assert.Len(t, questions(events), 1)
	_, ok := events[len(events)-1].(CompleteEvent)
	assert.True(t, ok)
}

func TestParseAnswers_FenceAfterPreamble(t *testing.T) {
	got, err := parseAnswers("Sure thing [1]. Result:\n```json\n[{\"n\":1}]\n```\nDone.")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, `{"n":1}`, string(got[0]))
}

func TestArrayScanner_Restart(t *testing.T) {
	buf := `[x] [{"a":1}]`
	s := NewArrayScanner()
	s.Feed(buf)
	require.True(t, s.Closed())
	s = s.Restart()
	if n := s.Feed(buf); n != 1 || !s.Closed() {
		t.Fatalf("got %d elements closed=%v, want 1 closed", n, s.Closed())
	}
	start, end, ok := s.Span()
	require.True(t, ok)
	assert.Equal(t, `[{"a":1}`, buf[start:end])
}

func TestRun_StringsWithBrackets(t *testing.T) {
	src := NewStaticSource(`[{"e":"use ] and } \" here"},`, `{"e":"[x]"}]`)
	events := Collect(NewExtractor(DefaultConfig()).Run(context.Background(), src, Context{}))
	qs := questions(events)
	require.Len(t, qs, 2)
	assert.JSONEq(t, `{"e":"use ] and } \" here"}`, string(qs[0].Question))
}

func TestRun_WrappedObjectFallsBackAtEnd(t *testing.T) {
	src := NewStaticSource(`{"answers": [{"n":1}]}`)
	events := Collect(NewExtractor(DefaultConfig()).Run(context.Background(), src, Context{}))
	done, ok := events[len(events)-1].(CompleteEvent)
	require.True(t, ok, "got %T", events[len(events)-1])
	assert.Len(t, done.Answers, 1)
	assert.Len(t, questions(events), 1)
}

func TestRun_UpstreamFailure(t *testing.T) {
	src := NewStaticSource(`[{"n":1},`).FailAfter(errors.New("connection reset"))
	events := Collect(NewExtractor(DefaultConfig()).Run(context.Background(), src, Context{}))

	assert.Len(t, questions(events), 1)
	errEv, ok := events[len(events)-1].(ErrorEvent)
	require.True(t, ok)
	assert.Contains(t, errEv.Message, "connection reset")
	assert.Zero(t, countType(events, "complete"))
}

func TestRun_ConsumerStopsEarly(t *testing.T) {
	src := NewStaticSource(`[{"n":1},`, `{"n":2},`, `{"n":3},`, `{"n":4}]`)
	for e := range NewExtractor(DefaultConfig()).Run(context.Background(), src, Context{}) {
		if _, ok := e.(QuestionEvent); ok {
			break
		}
	}
	assert.Equal(t, 1, src.Requested(), "no chunks may be requested after the consumer stops")
	assert.True(t, src.IsClosed())
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := NewStaticSource(`[{"n":1}]`)
	events := Collect(NewExtractor(DefaultConfig()).Run(ctx, src, Context{}))
	_, ok := events[len(events)-1].(ErrorEvent)
	assert.True(t, ok)
	assert.Zero(t, src.Requested())
}

func TestRun_EmitText(t *testing.T) {
	src := NewStaticSource(`[{"n":1}`, `]`)
	events := Collect(NewExtractor(Config{EmitText: true}).Run(context.Background(), src, Context{}))
	assert.Equal(t, 2, countType(events, "text"))
	assert.Equal(t, "status", events[0].Type())
	assert.True(t, IsTerminal(events[len(events)-1]))
}

func TestFindCompleteArray(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`[{"a":1},{"a":2}]`, `[{"a":1},{"a":2}]`, true},
		{`[{"a":1},{"a":`, `[{"a":1}]`, true},
		{`noise [1, 2, 3`, `[1, 2]`, true},
		{`[{"a":`, "", false},
		{`no array here`, "", false},
	}
	for _, tt := range tests {
		got, ok := FindCompleteArray(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("FindCompleteArray(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestArrayScanner_Resumes(t *testing.T) {
	s := NewArrayScanner()
	buf := `[{"a":`
	if n := s.Feed(buf); n != 0 {
		t.Fatalf("got %d elements, want 0", n)
	}
	buf += `1},{"b":2}`
	if n := s.Feed(buf); n != 2 {
		t.Fatalf("got %d new elements, want 2", n)
	}
	buf += `]`
	s.Feed(buf)
	if !s.Closed() {
		t.Error("array not closed")
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := map[string]string{
		"```json\n[1]\n```": "[1]",
		"```\n[1]":          "[1]",
		"  [1]  ":           "[1]",
	}
	for in, want := range tests {
		if got := StripCodeFences(in); got != want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", in, got, want)
		}
	}
}
