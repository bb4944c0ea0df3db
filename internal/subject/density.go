package subject

import (
	"unicode"
	"unicode/utf8"

	"github.com/abhisek/examlens/internal/pattern"
	"github.com/abhisek/examlens/internal/structure"
)

type textStats struct {
	runes    int
	nonSpace int
	latin    int
	han      int
	digits   int
}

func measure(text string) textStats {
	var st textStats
	for _, r := range text {
		st.runes++
		if unicode.IsSpace(r) {
			continue
		}
		st.nonSpace++
		switch {
		case r < utf8.RuneSelf && unicode.IsLetter(r):
			st.latin++
		case unicode.Is(unicode.Han, r):
			st.han++
		case unicode.IsDigit(r):
			st.digits++
		}
	}
	return st
}

// DetectByDensity classifies text by character classes. A long passage with
// question markers or lettered options short-circuits to English: mixed
// symbol and English content in exam text is nearly always an English item.
// The verdict then passes through GuardMath.
func (d *Detector) DetectByDensity(text string) Detection {
	st := measure(text)
	if st.nonSpace == 0 {
		return Detection{Subject: Unknown}
	}
	hanDensity := float64(st.han) / float64(st.nonSpace)
	words := pattern.EnglishWord.FindAllString(text, -1)
	wordLetters := 0
	for _, w := range words {
		wordLetters += len(w)
	}
	wordRatio := float64(wordLetters) / float64(st.nonSpace)
	mathHits := len(pattern.MathOperator.FindAllStringIndex(text, -1)) +
		len(pattern.MathFunction.FindAllStringIndex(text, -1))

	var det Detection
	switch {
	case d.isReadingPattern(text, st, hanDensity):
		det = Detection{Subject: English, Confidence: 0.85}
	case hanDensity > d.cfg.HanDensity:
		if mathHits >= 2 {
			det = Detection{Subject: Math, Confidence: 0.7}
		} else {
			det = Detection{Subject: Chinese, Confidence: clamp(0.5+hanDensity/2, 0.5, 0.95)}
		}
	case wordRatio > 0.5:
		if mathHits >= 2 && len(words) < 8 && st.digits > 0 {
			det = Detection{Subject: Math, Confidence: 0.65}
		} else {
			det = Detection{Subject: English, Confidence: clamp(0.4+wordRatio/2, 0.4, 0.9)}
		}
	case mathHits >= 1:
		det = Detection{Subject: Math, Confidence: 0.6}
	default:
		det = Detection{Subject: Unknown}
	}
	return GuardMath(text, det)
}

// isReadingPattern spots a long Latin-script passage carrying an explicit
// question marker or at least two lettered options.
func (d *Detector) isReadingPattern(text string, st textStats, hanDensity float64) bool {
	if st.runes < d.cfg.ReadingLength || hanDensity >= d.cfg.HanDensity {
		return false
	}
	if pattern.QuestionMarker.MatchString(text) {
		return true
	}
	return len(structure.ParseOptions(text)) >= 2
}

// GuardMath turns a Math verdict into English when the text has no digit,
// operator or function keyword to back it up.
func GuardMath(text string, det Detection) Detection {
	if det.Subject != Math {
		return det
	}
	if pattern.Digit.MatchString(text) || pattern.MathOperator.MatchString(text) || pattern.MathFunction.MatchString(text) {
		return det
	}
	det.Subject = English
	return det
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
