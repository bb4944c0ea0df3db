package structure

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DetectChoiceShape uses the default parser.
func DetectChoiceShape(options []string) ChoiceShape { return defaultParser.DetectChoiceShape(options) }

// Shape uses the default parser.
func Shape(options []string) ShapeStats { return defaultParser.Shape(options) }

// DetectChoiceShape classifies an option list as sentences, words/phrases,
// mixed, or none when the list is empty.
func (p *Parser) DetectChoiceShape(options []string) ChoiceShape {
	return p.Shape(options).Shape
}

// Shape returns the shape verdict together with the counts behind it.
//
// An option is sentence-shaped when it starts with an uppercase letter, ends
// in terminal punctuation and has at least MinSentenceTokens tokens. It is
// word/phrase-shaped when it has no terminal punctuation and at most
// MaxPhraseTokens tokens. A class wins when it reaches ShapeRatio.
func (p *Parser) Shape(options []string) ShapeStats {
	st := ShapeStats{Shape: ShapeNone, Total: len(options)}
	if len(options) == 0 {
		return st
	}
	for _, o := range options {
		o = strings.TrimSpace(o)
		tokens := len(strings.Fields(o))
		terminal := endsWithTerminal(o)
		switch {
		case startsUpper(o) && terminal && tokens >= p.cfg.MinSentenceTokens:
			st.Sentences++
		case !terminal && tokens > 0 && tokens <= p.cfg.MaxPhraseTokens:
			st.Words++
		}
	}
	st.SentenceRatio = float64(st.Sentences) / float64(st.Total)
	st.WordRatio = float64(st.Words) / float64(st.Total)

	switch {
	case st.SentenceRatio >= p.cfg.ShapeRatio:
		st.Shape = ShapeSentences
	case st.WordRatio >= p.cfg.ShapeRatio:
		st.Shape = ShapeWords
	default:
		st.Shape = ShapeMixed
	}
	return st
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

func endsWithTerminal(s string) bool {
	s = strings.TrimRight(s, "\"'”’)）」』 ")
	r, _ := utf8.DecodeLastRuneInString(s)
	switch r {
	case '.', '!', '?', '。', '！', '？', '…':
		return true
	}
	return false
}
