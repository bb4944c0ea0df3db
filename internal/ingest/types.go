// Package ingest ties the pipeline together: it classifies raw exam text,
// asks a completion service to answer it, and turns the streamed reply into
// sanitized, validated question events.
package ingest

import (
	"github.com/abhisek/examlens/internal/kind"
	"github.com/abhisek/examlens/internal/segment"
	"github.com/abhisek/examlens/internal/structure"
	"github.com/abhisek/examlens/internal/subject"
)

// RawInput is one pasted or OCR'd question blob.
type RawInput struct {
	Text string `json:"text"`

	// OptionHints are options the caller already extracted. When present
	// the text is not re-parsed for options.
	OptionHints []OptionHint `json:"optionHints,omitempty"`

	// SubjectHint skips subject detection when it names a known subject.
	SubjectHint string `json:"subjectHint,omitempty"`
}

// OptionHint is a caller-supplied answer choice. Key may be full-width or
// lowercase.
type OptionHint struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Classification is the JSON record returned for one question.
type Classification struct {
	Subject           subject.Subject    `json:"subject"`
	SubjectConfidence float64            `json:"subjectConfidence"`
	SubjectAmbiguous  bool               `json:"subjectAmbiguous,omitempty"`
	SecondBest        *subject.Candidate `json:"secondBest,omitempty"`

	Kind           kind.Kind    `json:"kind"`
	KindConfidence float64      `json:"kindConfidence"`
	Reason         string       `json:"reason"`
	Signals        []string     `json:"signals"`
	Variant        kind.Variant `json:"variant,omitempty"`
	LegacyKind     kind.Legacy  `json:"legacyKind"`

	Blanks  []structure.Blank  `json:"blanks"`
	Options []structure.Option `json:"options"`
}

// ExpectedAnswers is the number of answers a solver should produce for
// this question: one per distinct numbered blank for passage kinds, one
// otherwise.
func (c Classification) ExpectedAnswers() int {
	if c.Kind == kind.Cloze || c.Kind == kind.Discourse {
		if n := structure.DistinctBlankCount(c.Blanks); n > 0 {
			return n
		}
	}
	return 1
}

// SegmentResult pairs a segment with its classification.
type SegmentResult struct {
	Segment        segment.Segment `json:"segment"`
	Classification Classification  `json:"classification"`
}
