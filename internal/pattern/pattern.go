// Package pattern holds the compiled regular expressions and pure string
// helpers shared by the structural parser, the segmenter and the classifiers.
//
// Every quantifier over user-supplied text is bounded. Go's regexp package is
// linear-time, but the bounds also cap how much text a single match can pull
// into an option or a stem.
package pattern

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// MaxOptionText is the longest option text the parser will capture.
const MaxOptionText = 160

var (
	// NumberedBlank matches a parenthesized integer, half- or full-width,
	// with any interior whitespace. Callers must narrow the captured digits
	// with NarrowDigits, then reject years and integers of three or more
	// digits with IsBlankNumber.
	NumberedBlank = regexp.MustCompile(`[(（][ \t\x{3000}]{0,8}([0-9０-９]{1,8})[ \t\x{3000}]{0,8}[)）]`)

	// UnnumberedBlank matches an empty parenthesized slot or a run of
	// underscores used as a fill-in line.
	UnnumberedBlank = regexp.MustCompile(`[(（][ \t\x{3000}]{0,8}[)）]|_{3,40}`)

	// YearToken matches a bare 4-digit year between 1000 and 2999.
	YearToken = regexp.MustCompile(`^[12]\d{3}$`)

	// LineOption matches an option marker at line start: "(A)", "A.", "A)",
	// "A、", "A:" in either width, or an uppercase letter followed by
	// whitespace. Lowercase letters need punctuation so the English article
	// "a" at line start is not mistaken for a marker.
	LineOption = regexp.MustCompile(`(?m)^[ \t\x{3000}]{0,8}(?:[(（]([A-Ea-eＡ-Ｅａ-ｅ])[)）]|([A-Ea-eＡ-Ｅａ-ｅ])[.．)）、:：]|([A-EＡ-Ｅ])[ \t\x{3000}])[ \t\x{3000}]{0,8}([^\n]{0,160})`)

	// InlineOption finds a following marker inside captured option text so
	// "A. cat B. dog" on one line splits into two options.
	InlineOption = regexp.MustCompile(`[ \t\x{3000}](?:[(（][A-EＡ-Ｅ][)）]|[A-EＡ-Ｅ][.．)）、])`)

	// LooseOption locates A-D markers anywhere in the text: parenthesized
	// letters, or an uppercase letter after whitespace followed by
	// punctuation.
	LooseOption = regexp.MustCompile(`[(（]([A-Da-dＡ-Ｄａ-ｄ])[)）]|(?:^|[\s\x{3000}])([A-DＡ-Ｄ])[.．、)）]`)

	// ParenOption matches just the parenthesized markers the segmenter uses
	// to find 4-option runs.
	ParenOption = regexp.MustCompile(`[(（]([A-Ea-eＡ-Ｅａ-ｅ])[)）]`)

	// QuestionNumber matches an explicit question number at line start,
	// e.g. "1." "2)" "３．".
	QuestionNumber = regexp.MustCompile(`(?m)^[ \t\x{3000}]{0,8}([0-9０-９]{1,3})[.．)）、](?:[^0-9０-９]|$)`)

	// QuestionMarker matches explicit question markers: "Q3", "問題", "问题",
	// "第3題".
	QuestionMarker = regexp.MustCompile(`(?i)\bQ\s{0,2}\d{1,3}\b|問題|问题|第\s{0,2}\d{1,3}\s{0,2}[题題]`)

	// SeparatorPrefix is what ReconstructOptionsFromText trims off a slice.
	SeparatorPrefix = regexp.MustCompile(`^[\s\x{3000}.．)）、:：]{1,8}`)

	// LowerRun detects three consecutive lowercase Latin words.
	LowerRun = regexp.MustCompile(`\b[a-z]{1,30}\s{1,4}[a-z]{1,30}\s{1,4}[a-z]{1,30}\b`)

	// EnglishWord matches a Latin word of two or more letters.
	EnglishWord = regexp.MustCompile(`[A-Za-z]{2,40}`)

	// MathOperator matches arithmetic and relational symbols.
	MathOperator = regexp.MustCompile(`[=＋+×÷<>≤≥≠√∫∑π^％]|\d[ \t]{0,3}[-+*/][ \t]{0,3}\d`)

	// MathFunction matches common function keywords.
	MathFunction = regexp.MustCompile(`(?i)\b(?:sin|cos|tan|cot|sec|csc|log|ln|lim|sqrt|exp)\b`)

	// Digit matches any ASCII or full-width digit.
	Digit = regexp.MustCompile(`[0-9０-９]`)

	// Tags matches any HTML-ish tag for the plain-text fallback.
	Tags = regexp.MustCompile(`<[^<>]{0,1000}>`)
)

// NormalizeFullwidth maps full-width Latin letters (Ａ-Ｚ, ａ-ｚ) to their
// half-width forms. Every other rune is left untouched, so the function is
// idempotent.
func NormalizeFullwidth(s string) string {
	if !hasFullwidthLetter(s) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isFullwidthLetter(r) {
			if n := width.LookupRune(r).Narrow(); n != 0 {
				return n
			}
			return r - 0xFEE0
		}
		return r
	}, s)
}

// NarrowDigits maps full-width digits (０-９) to ASCII.
func NarrowDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '０' && r <= '９' {
			if n := width.LookupRune(r).Narrow(); n != 0 {
				return n
			}
			return r - '０' + '0'
		}
		return r
	}, s)
}

// NormalizeOptionKey returns the half-width uppercase form of an option key.
func NormalizeOptionKey(key string) string {
	return strings.ToUpper(NormalizeFullwidth(strings.TrimSpace(key)))
}

// IsYearToken reports whether digits is a 4-digit year in 1000-2999.
func IsYearToken(digits string) bool {
	return YearToken.MatchString(digits)
}

// IsBlankNumber reports whether digits is acceptable as a numbered-blank
// index: one or two digits, not zero, and never a year.
func IsBlankNumber(digits string) bool {
	if len(digits) == 0 || len(digits) >= 3 || IsYearToken(digits) {
		return false
	}
	return strings.TrimLeft(digits, "0") != ""
}

func isFullwidthLetter(r rune) bool {
	return (r >= 'Ａ' && r <= 'Ｚ') || (r >= 'ａ' && r <= 'ｚ')
}

func hasFullwidthLetter(s string) bool {
	for _, r := range s {
		if isFullwidthLetter(r) {
			return true
		}
	}
	return false
}
