package kind

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/examlens/internal/pattern"
	"github.com/abhisek/examlens/internal/structure"
	"github.com/abhisek/examlens/internal/subject"
)

var (
	grammarCue = regexp.MustCompile(`(?i)\b(?:who|whom|whose|which|had|has been|have been|will have|would have|were|being|having|neither|either|by the time|yesterday|tomorrow|already|since|ago)\b`)

	translationCue = regexp.MustCompile(`(?i)\btranslat(?:e|ion)\b|翻译|翻譯|中译英|英译中|中譯英|英譯中|译成|譯成`)

	writingCue = regexp.MustCompile(`(?i)\bessay\b|\bcomposition\b|\bwrite (?:a|an|about)\b|\bat least \d{1,4} words\b|作文|写作|寫作|\d{2,4}\s{0,2}字`)

	sentenceEnd = regexp.MustCompile(`[.!?](?:\s|$)|[。！？]`)
)

// Signals is the typed record every kind rule reads.
type Signals struct {
	NumberedBlanks     int
	DistinctBlanks     int
	UnnumberedBlanks   int
	OptionCount        int
	Shape              structure.ChoiceShape
	SentenceRatio      float64
	PassageLength      int
	SentenceCount      int
	HasQuestionMarker  bool
	HasEnumeratedItems bool
	HasGrammarCue      bool
	HasTranslationCue  bool
	HasWritingCue      bool
	Subject            subject.Subject
}

// Input is the parsed question handed to Gather. A "(n)" token that opens a
// line numbers a sub-question and is not counted as a blank.
type Input struct {
	Text    string
	Blanks  []structure.Blank
	Options []structure.Option
	Subject subject.Subject

	// Parser judges option shape. Nil uses the package default.
	Parser *structure.Parser
}

// Gather computes Signals from parsed structure. Passage length and
// sentence count are measured on the stem, the text before the first
// option marker.
func Gather(in Input) Signals {
	stem := stemOf(in.Text, len(in.Options))
	texts := structure.OptionTexts(in.Options)
	shape := shapeOf(in.Parser, texts)
	blanks, enumerated := splitEnumerated(in.Text, in.Blanks)

	return Signals{
		NumberedBlanks:     len(blanks),
		DistinctBlanks:     structure.DistinctBlankCount(blanks),
		UnnumberedBlanks:   structure.CountUnnumberedBlanks(in.Text),
		OptionCount:        len(in.Options),
		Shape:              shape.Shape,
		SentenceRatio:      shape.SentenceRatio,
		PassageLength:      utf8.RuneCountInString(strings.TrimSpace(stem)),
		SentenceCount:      countSentences(stem),
		HasQuestionMarker:  pattern.QuestionMarker.MatchString(in.Text),
		HasEnumeratedItems: enumerated > 0,
		HasGrammarCue:      grammarCue.MatchString(stem) || sharesWordStem(texts),
		HasTranslationCue:  translationCue.MatchString(in.Text),
		HasWritingCue:      writingCue.MatchString(in.Text),
		Subject:            in.Subject,
	}
}

func shapeOf(p *structure.Parser, texts []string) structure.ShapeStats {
	if p == nil {
		return structure.Shape(texts)
	}
	return p.Shape(texts)
}

// stemOf cuts text at the earliest option marker when options were found.
func stemOf(text string, optionCount int) string {
	if optionCount < 2 {
		return text
	}
	cut := len(text)
	if loc := pattern.LineOption.FindStringIndex(text); loc != nil && loc[0] < cut {
		cut = loc[0]
	}
	if loc := pattern.LooseOption.FindStringIndex(text); loc != nil && loc[0] < cut {
		cut = loc[0]
	}
	return text[:cut]
}

func countSentences(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n := len(sentenceEnd.FindAllStringIndex(s, -1))
	if r, _ := utf8.DecodeLastRuneInString(s); !strings.ContainsRune(".!?。！？", r) {
		n++
	}
	return n
}

// splitEnumerated separates "(1)" tokens that open a line, which number
// sub-questions, from inline blanks.
func splitEnumerated(text string, blanks []structure.Blank) (inline []structure.Blank, enumerated int) {
	for _, b := range blanks {
		lineStart := strings.LastIndexByte(text[:b.Span[0]], '\n') + 1
		if strings.TrimSpace(text[lineStart:b.Span[0]]) == "" {
			enumerated++
			continue
		}
		inline = append(inline, b)
	}
	return inline, enumerated
}

// sharesWordStem reports whether single-word options look like inflections
// of one word, e.g. go / goes / going / gone.
func sharesWordStem(opts []string) bool {
	if len(opts) < 3 {
		return false
	}
	for _, o := range opts {
		if len(strings.Fields(o)) != 1 {
			return false
		}
	}
	first := strings.ToLower(opts[0])
	shared := 0
	for _, o := range opts[1:] {
		if commonPrefix(first, strings.ToLower(o)) >= 2 {
			shared++
		}
	}
	return shared >= len(opts)-2
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
