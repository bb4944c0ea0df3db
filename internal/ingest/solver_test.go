package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examlens/internal/llm"
	"github.com/abhisek/examlens/internal/store"
	"github.com/abhisek/examlens/internal/stream"
)

const vocabText = "He is a (A) doctor (B) lawyer (C) nurse (D) engineer"

func openRepo(t *testing.T) store.EventRepo {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st.EventRepo()
}

func newTestSolver(t *testing.T, responses ...llm.MockResponse) (*Solver, *llm.MockProvider, store.EventRepo) {
	t.Helper()
	mock := llm.NewMockProvider(responses...)
	repo := openRepo(t)
	return NewSolver(mock, nil, repo, DefaultSolverConfig()), mock, repo
}

func sessions(t *testing.T, repo store.EventRepo) []store.SolveSessionRecord {
	t.Helper()
	recs, err := repo.QuerySolveSessions(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	return recs
}

func questions(events []stream.Event) []stream.QuestionEvent {
	var out []stream.QuestionEvent
	for _, e := range events {
		if q, ok := e.(stream.QuestionEvent); ok {
			out = append(out, q)
		}
	}
	return out
}

func TestSolve_SanitizesAndRecords(t *testing.T) {
	s, mock, repo := newTestSolver(t, llm.MockResponse{Chunks: []string{
		`[{"index":1,"answer":"A",`,
		`"explanation":"A <strong>doctor</strong> treats patients.<script>steal()</script>"}]`,
	}})

	events := stream.Collect(s.Solve(context.Background(), RawInput{Text: vocabText}))
	require.NotEmpty(t, events)

	first, ok := events[0].(stream.StatusEvent)
	require.True(t, ok, "first event is %T", events[0])
	assert.Equal(t, "vocab", first.Message)

	qs := questions(events)
	require.Len(t, qs, 1)
	assert.Empty(t, qs[0].Invalid)
	var ans map[string]any
	require.NoError(t, json.Unmarshal(qs[0].Question, &ans))
	assert.Equal(t, "A <strong>doctor</strong> treats patients.", ans["explanation"])

	done, ok := events[len(events)-1].(stream.CompleteEvent)
	require.True(t, ok, "last event is %T", events[len(events)-1])
	assert.Equal(t, 1, done.Expected)
	assert.Len(t, done.Answers, 1)
	assert.NotContains(t, string(done.Answers[0]), "script")
	assert.NotEmpty(t, done.GroupID)
	assert.Empty(t, done.Passage, "vocab questions carry no passage")

	require.Len(t, mock.Calls, 1)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Question kind: vocab")
	assert.Contains(t, mock.Calls[0].Messages[0].Content, vocabText)

	recs := sessions(t, repo)
	require.Len(t, recs, 1)
	assert.Equal(t, StatusComplete, recs[0].Status)
	assert.Equal(t, done.GroupID, recs[0].GroupID)
	assert.Equal(t, "vocab", recs[0].Kind)
	assert.Equal(t, "E1", recs[0].LegacyKind)
	assert.Equal(t, 1, recs[0].Decoded)
	assert.False(t, recs[0].Mismatch)
}

func TestSolve_MarksInvalidAnswers(t *testing.T) {
	s, _, repo := newTestSolver(t, llm.MockResponse{Chunks: []string{
		`[{"index":1,"answer":"E","explanation":"no such option"}]`,
	}})

	events := stream.Collect(s.Solve(context.Background(), RawInput{Text: vocabText}))
	qs := questions(events)
	require.Len(t, qs, 1)
	assert.Contains(t, qs[0].Invalid, `validator "choice"`)
	assert.IsType(t, stream.CompleteEvent{}, events[len(events)-1], "invalid answers are still delivered")

	recs := sessions(t, repo)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Invalid)
}

func TestSolve_SchemaFailure(t *testing.T) {
	s, _, _ := newTestSolver(t, llm.MockResponse{Chunks: []string{`[{"answer":"B"}]`}})

	qs := questions(stream.Collect(s.Solve(context.Background(), RawInput{Text: vocabText})))
	require.Len(t, qs, 1)
	assert.Contains(t, qs[0].Invalid, `validator "schema"`)
}

func TestSolve_CountMismatch(t *testing.T) {
	text := "1. She ___ to school.\n(A) go\n(B) goes\n(C) going\n(D) gone\n" +
		"2. They ___ happy.\n(A) is\n(B) are\n(C) am\n(D) be\n" +
		"3. We ___ dinner now.\n(A) eat\n(B) eats\n(C) are eating\n(D) eaten"
	s, mock, repo := newTestSolver(t, llm.MockResponse{Chunks: []string{
		`[{"index":1,"answer":"B","explanation":"third person"},`,
		`{"index":2,"answer":"B","explanation":"plural subject"}]`,
	}})

	events := stream.Collect(s.Solve(context.Background(), RawInput{Text: text}))
	done, ok := events[len(events)-1].(stream.CompleteEvent)
	require.True(t, ok)
	assert.Equal(t, 3, done.Expected)
	assert.Len(t, done.Questions, 3)
	assert.Len(t, done.Answers, 2)

	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Answers expected: 3")

	recs := sessions(t, repo)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Mismatch)
	assert.Equal(t, 3, recs[0].Expected)
	assert.Equal(t, 2, recs[0].Decoded)
}

func TestSolve_OpenFailure(t *testing.T) {
	s, _, repo := newTestSolver(t, llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})

	events := stream.Collect(s.Solve(context.Background(), RawInput{Text: vocabText}))
	require.Len(t, events, 2)
	last, ok := events[1].(stream.ErrorEvent)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(last.Message, "open stream:"))

	recs := sessions(t, repo)
	require.Len(t, recs, 1)
	assert.Equal(t, StatusError, recs[0].Status)
}

func TestSolve_MidStreamFailure(t *testing.T) {
	s, _, repo := newTestSolver(t, llm.MockResponse{
		Chunks:    []string{`[{"index":1,"answer":"A","explanation":"x"},`},
		StreamErr: errors.New("connection reset"),
	})

	events := stream.Collect(s.Solve(context.Background(), RawInput{Text: vocabText}))
	assert.Len(t, questions(events), 1, "answers decoded before the failure are kept")
	last, ok := events[len(events)-1].(stream.ErrorEvent)
	require.True(t, ok)
	assert.Contains(t, last.Message, "connection reset")

	recs := sessions(t, repo)
	require.Len(t, recs, 1)
	assert.Equal(t, StatusError, recs[0].Status)
	assert.Contains(t, recs[0].ErrorMessage, "connection reset")
}

func TestSolve_ConsumerStops(t *testing.T) {
	s, mock, repo := newTestSolver(t, llm.MockResponse{Chunks: []string{
		`[{"index":1,"answer":"A","explanation":"x"},`,
		`{"index":2,"answer":"B","explanation":"y"}]`,
	}})

	for ev := range s.Solve(context.Background(), RawInput{Text: vocabText}) {
		if _, ok := ev.(stream.QuestionEvent); ok {
			break
		}
	}

	require.Len(t, mock.Sources, 1)
	assert.True(t, mock.Sources[0].IsClosed())
	assert.Equal(t, 1, mock.Sources[0].Requested())

	recs := sessions(t, repo)
	require.Len(t, recs, 1)
	assert.Equal(t, StatusCancelled, recs[0].Status)
}

func TestSolve_NilRepo(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Chunks: []string{`[]`}})
	s := NewSolver(mock, NewAnalyzer(DefaultConfig()), nil, DefaultSolverConfig())

	events := stream.Collect(s.Solve(context.Background(), RawInput{Text: vocabText}))
	assert.IsType(t, stream.CompleteEvent{}, events[len(events)-1])
}
