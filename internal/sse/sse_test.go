package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examlens/internal/stream"
)

func TestWriteEvent_Frames(t *testing.T) {
	tests := []struct {
		name  string
		event stream.Event
		want  string
	}{
		{
			"question",
			stream.QuestionEvent{Index: 0, Question: json.RawMessage(`{"answer":"A"}`)},
			`data: {"type":"question","data":{"index":0,"question":{"answer":"A"}}}` + "\n\n",
		},
		{
			"status",
			stream.StatusEvent{Stage: "streaming", Message: "waiting"},
			`data: {"type":"status","data":{"stage":"streaming","message":"waiting"}}` + "\n\n",
		},
		{
			"error keeps markup unescaped",
			stream.ErrorEvent{Message: "bad", Buffer: "<b>x</b>"},
			`data: {"type":"error","data":{"message":"bad","buffer":"<b>x</b>"}}` + "\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf).WriteEvent(tt.event))
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestHTTPWriter_SetsHeadersAndFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewHTTPWriter(rec)
	require.NoError(t, err)

	require.NoError(t, w.WriteEvent(stream.CompleteEvent{Answers: []json.RawMessage{json.RawMessage(`1`)}}))
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.True(t, rec.Flushed)
	assert.Contains(t, rec.Body.String(), `"type":"complete"`)
}

func TestWriteEvent_AfterClose(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.WriteEvent(stream.TextEvent{Chunk: "x"}), ErrClosed)
}

type failingWriter struct{ writes int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	return 0, errors.New("client went away")
}

func TestPipe_StopsOnWriteFailure(t *testing.T) {
	src := stream.NewStaticSource(`[{"a":1},`, `{"a":2},`, `{"a":3}]`)
	x := stream.NewExtractor(stream.DefaultConfig())

	fw := &failingWriter{}
	err := Pipe(NewWriter(fw), x.Run(t.Context(), src, stream.Context{}))
	require.Error(t, err)
	assert.Equal(t, 1, fw.writes)
	assert.True(t, src.IsClosed())
	assert.Equal(t, 0, src.Requested(), "nothing is read after the first failed write")
}
