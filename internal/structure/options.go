package structure

import (
	"strings"
	"unicode/utf8"

	"github.com/abhisek/examlens/internal/pattern"
)

// Parser extracts options and classifies their shape using a Config.
// The zero value is not usable; build one with New.
type Parser struct {
	cfg Config
}

// New creates a Parser. Non-positive fields fall back to DefaultConfig.
func New(cfg Config) *Parser {
	def := DefaultConfig()
	if cfg.ShapeRatio <= 0 {
		cfg.ShapeRatio = def.ShapeRatio
	}
	if cfg.MaxOptionLength <= 0 {
		cfg.MaxOptionLength = def.MaxOptionLength
	}
	if cfg.MinSentenceTokens <= 0 {
		cfg.MinSentenceTokens = def.MinSentenceTokens
	}
	if cfg.MaxPhraseTokens <= 0 {
		cfg.MaxPhraseTokens = def.MaxPhraseTokens
	}
	return &Parser{cfg: cfg}
}

var defaultParser = New(DefaultConfig())

// ExtractOptions uses the default parser.
func ExtractOptions(text string) []Option { return defaultParser.ExtractOptions(text) }

// ExtractOptionMarkers uses the default parser.
func ExtractOptionMarkers(text string) []OptionMarker { return defaultParser.ExtractOptionMarkers(text) }

// ReconstructOptionsFromText uses the default parser.
func ReconstructOptionsFromText(text string) []Option {
	return defaultParser.ReconstructOptionsFromText(text)
}

// ParseOptions uses the default parser.
func ParseOptions(text string) []Option { return defaultParser.ParseOptions(text) }

// ExtractOptionMarkers returns the markers ExtractOptions would use, with
// keys exactly as written.
func (p *Parser) ExtractOptionMarkers(text string) []OptionMarker {
	var out []OptionMarker
	p.scanLineOptions(text, func(raw string, span [2]int, _ string) {
		out = append(out, OptionMarker{Key: raw, Span: span})
	})
	return out
}

// ExtractOptions matches line-start option markers (A-E, either width,
// either case) and captures the text up to the next marker or line end.
// Options are deduplicated by normalized key; the first occurrence wins.
func (p *Parser) ExtractOptions(text string) []Option {
	var out []Option
	seen := make(map[string]bool)
	p.scanLineOptions(text, func(raw string, _ [2]int, body string) {
		key := pattern.NormalizeOptionKey(raw)
		if seen[key] {
			return
		}
		body = p.clip(body)
		if body == "" {
			return
		}
		seen[key] = true
		out = append(out, Option{Key: key, RawKey: raw, Text: body})
	})
	return out
}

// scanLineOptions walks line-start markers and any further markers on the
// same line, calling fn with the raw key, the marker span and its text.
func (p *Parser) scanLineOptions(text string, fn func(raw string, span [2]int, body string)) {
	for _, m := range pattern.LineOption.FindAllStringSubmatchIndex(text, -1) {
		var keyStart, keyEnd int
		for g := 1; g <= 3; g++ {
			if m[2*g] >= 0 {
				keyStart, keyEnd = m[2*g], m[2*g+1]
				break
			}
		}
		bodyStart, bodyEnd := m[8], m[9]
		raw := text[keyStart:keyEnd]
		line := text[bodyStart:bodyEnd]

		inline := pattern.InlineOption.FindAllStringIndex(line, -1)
		if len(inline) == 0 {
			fn(raw, [2]int{m[0], bodyStart}, line)
			continue
		}
		fn(raw, [2]int{m[0], bodyStart}, line[:inline[0][0]])
		for i, im := range inline {
			end := len(line)
			if i+1 < len(inline) {
				end = inline[i+1][0]
			}
			marker := line[im[0]:im[1]]
			k := markerLetter(marker)
			if k == "" {
				continue
			}
			fn(k, [2]int{bodyStart + im[0], bodyStart + im[1]}, line[im[1]:end])
		}
	}
}

// ReconstructOptionsFromText is the fallback for text where options sit
// inline, e.g. "He is a (A) doctor (B) lawyer ...". It slices the text
// between consecutive A-D markers and keeps the first line of each slice.
// Fewer than two reconstructed options yields nil: a lone marker is more
// likely an aside than an exam option.
func (p *Parser) ReconstructOptionsFromText(text string) []Option {
	type marker struct {
		raw        string
		start, end int
	}
	var markers []marker
	seen := make(map[string]bool)
	for _, m := range pattern.LooseOption.FindAllStringSubmatchIndex(text, -1) {
		ks, ke := m[2], m[3]
		if ks < 0 {
			ks, ke = m[4], m[5]
		}
		if ks < 0 {
			continue
		}
		raw := text[ks:ke]
		key := pattern.NormalizeOptionKey(raw)
		if seen[key] {
			continue
		}
		seen[key] = true
		markers = append(markers, marker{raw: raw, start: m[0], end: m[1]})
	}
	if len(markers) < 2 {
		return nil
	}

	var out []Option
	for i, mk := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		slice := pattern.SeparatorPrefix.ReplaceAllString(text[mk.end:end], "")
		if nl := strings.IndexByte(slice, '\n'); nl >= 0 {
			slice = slice[:nl]
		}
		body := p.clip(slice)
		if body == "" {
			continue
		}
		out = append(out, Option{Key: pattern.NormalizeOptionKey(mk.raw), RawKey: mk.raw, Text: body})
	}
	if len(out) < 2 {
		return nil
	}
	return out
}

// ParseOptions runs ExtractOptions and falls back to
// ReconstructOptionsFromText when the primary pass finds fewer than two.
func (p *Parser) ParseOptions(text string) []Option {
	primary := p.ExtractOptions(text)
	if len(primary) >= 2 {
		return primary
	}
	if rebuilt := p.ReconstructOptionsFromText(text); len(rebuilt) > 0 {
		return rebuilt
	}
	return primary
}

// clip trims s and bounds it to MaxOptionLength runes.
func (p *Parser) clip(s string) string {
	s = strings.TrimSpace(strings.Trim(s, "　"))
	if utf8.RuneCountInString(s) <= p.cfg.MaxOptionLength {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:p.cfg.MaxOptionLength]))
}

func markerLetter(marker string) string {
	for _, r := range marker {
		if (r >= 'A' && r <= 'E') || (r >= 'Ａ' && r <= 'Ｅ') {
			return string(r)
		}
	}
	return ""
}

// OptionTexts returns the text of each option.
func OptionTexts(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Text
	}
	return out
}

// ClipOptionText trims s and bounds it to the default option length.
func ClipOptionText(s string) string { return defaultParser.clip(s) }

// ClipOptionText caps s at the parser's MaxOptionLength.
func (p *Parser) ClipOptionText(s string) string { return p.clip(s) }
