package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examlens/internal/kind"
	"github.com/abhisek/examlens/internal/structure"
	"github.com/abhisek/examlens/internal/subject"
)

func TestAnalyze_Vocab(t *testing.T) {
	c := Analyze(RawInput{Text: "He is a (A) doctor (B) lawyer (C) nurse (D) engineer"})

	if c.Kind != kind.Vocab {
		t.Fatalf("got %q (%s), want vocab", c.Kind, c.Reason)
	}
	assert.Equal(t, kind.E1, c.LegacyKind)
	assert.Contains(t, c.Signals, "optionCount=4")
	assert.Contains(t, c.Signals, "noBlanks")
	assert.Len(t, c.Options, 4)
	assert.Empty(t, c.Blanks)
	assert.Equal(t, 1, c.ExpectedAnswers())
}

func TestAnalyze_SubjectHint(t *testing.T) {
	c := Analyze(RawInput{Text: "whatever", SubjectHint: " Math "})
	assert.Equal(t, subject.Math, c.Subject)
	assert.Equal(t, 1.0, c.SubjectConfidence)

	c = Analyze(RawInput{Text: "2x + 3 = 7, solve for x", SubjectHint: "unknown"})
	assert.NotEqual(t, 1.0, c.SubjectConfidence, "an unknown hint must not short-circuit detection")
}

func TestAnalyze_OptionHints(t *testing.T) {
	c := Analyze(RawInput{
		Text: "Choose the word closest in meaning to glad. (A) angry (B) tired",
		OptionHints: []OptionHint{
			{Key: "（Ａ）", Text: " happy "},
			{Key: "b", Text: "sad"},
			{Key: "B", Text: "duplicate"},
			{Key: "", Text: "no key"},
		},
	})

	want := []structure.Option{
		{Key: "A", RawKey: "（Ａ）", Text: "happy"},
		{Key: "B", RawKey: "b", Text: "sad"},
	}
	assert.Equal(t, want, c.Options, "hints replace parsed options")
}

func TestAnalyzer_HonoursStructureConfig(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&b, "The village council met again in the spring to talk about the old bridge. (%d) ", i)
		b.WriteString("Many people came to listen and share their own ideas. ")
	}
	b.WriteString("\n(A) The farmers finally agreed to repair it together.\n" +
		"(B) Some wanted a new bridge made of steel.\n" +
		"(C) Others worried about the cost of the work.\n" +
		"(D) The mayor promised to find the money soon.\n" +
		"(E) the river\n")
	in := RawInput{Text: b.String(), SubjectHint: "english"}

	require.Equal(t, kind.Discourse, Analyze(in).Kind)

	cfg := DefaultConfig()
	cfg.Structure.ShapeRatio = 0.95
	c := NewAnalyzer(cfg).Analyze(in)
	assert.Equal(t, kind.Cloze, c.Kind, "signals: %v", c.Signals)
	assert.Contains(t, c.Signals, "shape=mixed")

	cfg = DefaultConfig()
	cfg.Structure.MaxOptionLength = 5
	c = NewAnalyzer(cfg).Analyze(RawInput{Text: "pick one", OptionHints: []OptionHint{{Key: "A", Text: "elephant"}}})
	require.Len(t, c.Options, 1)
	assert.Equal(t, "eleph", c.Options[0].Text)
}

func TestAnalyze_EmptyInputDegrades(t *testing.T) {
	c := Analyze(RawInput{})
	assert.True(t, c.Kind.IsCanonical(), "got %q", c.Kind)
	assert.Equal(t, subject.Unknown, c.Subject)
	assert.NotNil(t, c.Blanks)
	assert.NotNil(t, c.Options)
}

func TestClassification_JSONFields(t *testing.T) {
	c := Analyze(RawInput{Text: "He is a (A) doctor (B) lawyer (C) nurse (D) engineer"})
	b, err := json.Marshal(c)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, key := range []string{"subject", "subjectConfidence", "kind", "kindConfidence", "reason", "signals", "blanks", "options", "legacyKind"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, "vocab", m["kind"])
	assert.Equal(t, "E1", m["legacyKind"])
}

func TestExpectedAnswers(t *testing.T) {
	blanks := []structure.Blank{{Index: 1}, {Index: 2}, {Index: 2}, {Index: 3}}
	tests := []struct {
		name string
		c    Classification
		want int
	}{
		{"cloze counts distinct blanks", Classification{Kind: kind.Cloze, Blanks: blanks}, 3},
		{"discourse counts distinct blanks", Classification{Kind: kind.Discourse, Blanks: blanks}, 3},
		{"cloze without blanks", Classification{Kind: kind.Cloze}, 1},
		{"vocab", Classification{Kind: kind.Vocab, Blanks: blanks}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.ExpectedAnswers(); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAnalyzeBatch_KeepsOrder(t *testing.T) {
	text := "1. She ___ to school.\n(A) go\n(B) goes\n(C) going\n(D) gone\n" +
		"2. They ___ happy.\n(A) is\n(B) are\n(C) am\n(D) be\n" +
		"3. We ___ dinner now.\n(A) eat\n(B) eats\n(C) are eating\n(D) eaten"

	results, err := NewAnalyzer(Config{Workers: 2}).AnalyzeBatch(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i+1, r.Segment.Index)
		assert.True(t, r.Segment.HasExplicitNumber)
		assert.Len(t, r.Classification.Options, 4, "segment %d", i+1)
	}
	assert.Equal(t, "goes", results[0].Classification.Options[1].Text)
	assert.Equal(t, "are eating", results[2].Classification.Options[2].Text)
}

func TestAnalyzeBatch_Unsegmentable(t *testing.T) {
	results, err := AnalyzeBatch(context.Background(), "Write a short letter to your friend about your holiday.")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Segment.Options)
}

func TestAnalyzeBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := AnalyzeBatch(ctx, "1. First?\n2. Second?")
	assert.ErrorIs(t, err, context.Canceled)
}
