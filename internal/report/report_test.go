package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/examlens/internal/ingest"
	"github.com/abhisek/examlens/internal/kind"
	"github.com/abhisek/examlens/internal/segment"
	"github.com/abhisek/examlens/internal/stream"
	"github.com/abhisek/examlens/internal/structure"
	"github.com/abhisek/examlens/internal/subject"
)

func clozeRecord() ingest.Classification {
	return ingest.Classification{
		Subject:           subject.English,
		SubjectConfidence: 0.9,
		SubjectAmbiguous:  true,
		SecondBest:        &subject.Candidate{Subject: subject.Chinese, Confidence: 0.88},
		Kind:              kind.Cloze,
		KindConfidence:    0.85,
		Reason:            "numbered blanks in a passage",
		Signals:           []string{"numbered_blanks"},
		LegacyKind:        kind.Legacy("E3"),
		Blanks:            []structure.Blank{{Index: 1}, {Index: 2}},
		Options:           []structure.Option{{Key: "A", Text: "went"}, {Key: "B", Text: "goes"}},
	}
}

func TestRender(t *testing.T) {
	out := Render(clozeRecord())

	for _, want := range []string{"cloze", "E3", "0.90", "ambiguous", "runner-up", "0.88",
		"numbered blanks in a passage", "(1) (2)", "went", "goes"} {
		assert.Contains(t, out, want)
	}
	assert.Greater(t, strings.Count(out, "\n"), 6)
}

func TestRender_OmitsEmptySections(t *testing.T) {
	out := Render(ingest.Classification{Subject: subject.Unknown, Kind: kind.Unknown, Reason: "no rule matched"})
	assert.NotContains(t, out, "options")
	assert.NotContains(t, out, "blanks")
	assert.NotContains(t, out, "ambiguous")
}

func TestRenderBatch(t *testing.T) {
	out := RenderBatch([]ingest.SegmentResult{
		{Segment: segment.Segment{Index: 1}, Classification: clozeRecord()},
		{Segment: segment.Segment{Index: 2}, Classification: clozeRecord()},
	})
	assert.Contains(t, out, "Question 1")
	assert.Contains(t, out, "Question 2")
}

func TestRenderEvent(t *testing.T) {
	tests := []struct {
		event stream.Event
		want  string
	}{
		{stream.StatusEvent{Stage: "classified", Message: "cloze"}, "cloze"},
		{stream.QuestionEvent{Index: 0, Question: json.RawMessage(`{"answer":"B"}`), Invalid: "bad choice"}, "bad choice"},
		{stream.CompleteEvent{Answers: []json.RawMessage{json.RawMessage(`{}`)}}, "complete: 1 answers"},
		{stream.ErrorEvent{Message: "upstream closed"}, "error: upstream closed"},
	}
	for _, tt := range tests {
		assert.Contains(t, RenderEvent(tt.event), tt.want)
	}
}
