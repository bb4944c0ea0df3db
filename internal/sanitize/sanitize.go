// Package sanitize cleans model-derived strings before they are rendered.
//
// Every string goes through one of two profiles. Inline allows emphasis,
// mark, span and code only. Passage adds paragraphs, lists, headings,
// blockquotes and links. Both drop event-handler attributes, javascript:
// URLs and every tag outside the allow-list.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/abhisek/examlens/internal/pattern"
)

// Profile names an allow-list.
type Profile string

const (
	Inline  Profile = "inline"
	Passage Profile = "passage"
)

// ParseProfile maps a name to a Profile. Anything unknown gets Inline, the
// tighter list.
func ParseProfile(s string) Profile {
	if Profile(strings.ToLower(strings.TrimSpace(s))) == Passage {
		return Passage
	}
	return Inline
}

var inlineTags = []string{"em", "strong", "b", "i", "u", "mark", "span", "code", "sub", "sup", "br"}

var blockTags = []string{"p", "ul", "ol", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote"}

var (
	inlinePolicy  = newInlinePolicy()
	passagePolicy = newPassagePolicy()

	dangerous = regexp.MustCompile(`(?i)<script|javascript:|on\w+=|<iframe|<object|<embed`)
	jsScheme  = regexp.MustCompile(`(?i)javascript\s{0,8}:`)
)

// previewLength bounds the text logged for dangerous input.
const previewLength = 80

func newInlinePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(inlineTags...)
	return p
}

func newPassagePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(inlineTags...)
	p.AllowElements(blockTags...)
	p.AllowStandardURLs()
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	return p
}

// Sanitize cleans text under profile. It never fails: if the HTML
// sanitizer panics, the text is reduced to plain text instead.
func Sanitize(text string, profile Profile) string {
	if text == "" {
		return ""
	}
	if ContainsDangerousContent(text) {
		zap.L().Warn("dangerous content in model output",
			zap.String("profile", string(profile)),
			zap.String("preview", preview(text)),
		)
	}
	policy := inlinePolicy
	if profile == Passage {
		policy = passagePolicy
	}
	return apply(policy, text)
}

// SanitizeInline cleans a short fragment such as an option or a one-line
// explanation.
func SanitizeInline(text string) string { return Sanitize(text, Inline) }

// SanitizePassage cleans block content such as a passage or a full
// explanation.
func SanitizePassage(text string) string { return Sanitize(text, Passage) }

func apply(p *bluemonday.Policy, text string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("html sanitizer failed, falling back to plain text", zap.Any("panic", r))
			out = StripAllTags(text)
		}
	}()
	return strings.TrimSpace(p.Sanitize(text))
}

// ContainsDangerousContent reports whether text carries a script tag, a
// javascript: URL, an on*= handler, or an iframe, object or embed tag. The
// handler check is a plain case-insensitive on\w+= with no word boundary, so
// prose such as "mentions=" also trips it. It does not modify text.
func ContainsDangerousContent(text string) bool {
	return dangerous.MatchString(text)
}

// StripAllTags reduces text to plain text: script and style blocks go with
// their content, every other tag is dropped and javascript: schemes are
// removed.
func StripAllTags(text string) string {
	text = dropBlocks(text, "script")
	text = dropBlocks(text, "style")
	text = pattern.Tags.ReplaceAllString(text, "")
	text = jsScheme.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// dropBlocks removes every <tag ...>...</tag> block, content included. An
// unterminated block is removed to the end of text.
func dropBlocks(text, tag string) string {
	open, closing := "<"+tag, "</"+tag
	var b strings.Builder
	for {
		lower := asciiLower(text)
		i := strings.Index(lower, open)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i])
		j := strings.Index(lower[i:], closing)
		if j < 0 {
			return b.String()
		}
		end := i + j + len(closing)
		if k := strings.IndexByte(text[end:], '>'); k >= 0 {
			end += k + 1
		} else {
			end = len(text)
		}
		text = text[end:]
	}
}

// asciiLower folds A-Z only, so byte offsets into the result are valid in s.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	return string([]rune(s)[:previewLength]) + "..."
}
