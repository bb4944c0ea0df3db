// Package segment splits a pasted blob into individual questions.
package segment

import (
	"strings"

	"github.com/abhisek/examlens/internal/pattern"
	"github.com/abhisek/examlens/internal/structure"
)

// Segment is one question cut out of a larger input.
type Segment struct {
	// Index is the 1-based position of the segment in the input.
	Index int `json:"index"`

	// Text is the full question text, stem plus options.
	Text string `json:"text"`

	// Stem is the question text without its option run. Equal to Text for
	// numbered segments.
	Stem string `json:"stem"`

	// Options holds exactly four options when the segment ends in a 4-option
	// run, and is nil otherwise.
	Options []structure.Option `json:"options,omitempty"`

	// HasExplicitNumber is set when the split came from "1." style numbering.
	HasExplicitNumber bool `json:"hasExplicitNumber"`
}

// Split cuts text into question segments. Explicit line-start numbering
// wins when it produces more than one chunk. Otherwise each run of exactly
// four parenthesized markers (A)-(D) closes one question. Input with neither
// comes back as a single segment without options.
func Split(text string) []Segment {
	if segs := splitNumbered(text); len(segs) > 1 {
		return segs
	}
	if segs := splitOptionRuns(text); len(segs) > 0 {
		return segs
	}
	whole := strings.TrimSpace(text)
	return []Segment{{Index: 1, Text: whole, Stem: whole}}
}

func splitNumbered(text string) []Segment {
	locs := pattern.QuestionNumber.FindAllStringIndex(text, -1)
	if len(locs) < 2 {
		return nil
	}
	preamble := text[:locs[0][0]]

	segs := make([]Segment, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		chunk := text[loc[0]:end]
		if i == 0 && strings.TrimSpace(preamble) != "" {
			chunk = preamble + chunk
		}
		chunk = strings.TrimSpace(chunk)
		seg := Segment{
			Index:             i + 1,
			Text:              chunk,
			Stem:              chunk,
			HasExplicitNumber: true,
		}
		if opts := structure.ParseOptions(chunk); len(opts) == 4 {
			seg.Options = opts
		}
		segs = append(segs, seg)
	}
	return segs
}

type marker struct {
	key, raw   string
	start, end int
}

func splitOptionRuns(text string) []Segment {
	var markers []marker
	for _, m := range pattern.ParenOption.FindAllStringSubmatchIndex(text, -1) {
		markers = append(markers, marker{
			key:   pattern.NormalizeOptionKey(text[m[2]:m[3]]),
			raw:   text[m[2]:m[3]],
			start: m[0],
			end:   m[1],
		})
	}

	var runs [][]marker
	for i := 0; i+3 < len(markers); {
		if !isRun(markers[i : i+4]) {
			i++
			continue
		}
		if i+4 < len(markers) && markers[i+4].key == "E" {
			i += 5
			continue
		}
		runs = append(runs, markers[i:i+4])
		i += 4
	}
	if len(runs) == 0 {
		return nil
	}

	segs := make([]Segment, 0, len(runs))
	prevEnd := 0
	for r, run := range runs {
		limit := len(text)
		if r+1 < len(runs) {
			limit = runs[r+1][0].start
		}
		dEnd := optionTailEnd(text, run[3].end, limit)

		opts := make([]structure.Option, 4)
		for j, mk := range run {
			end := dEnd
			if j < 3 {
				end = run[j+1].start
			}
			opts[j] = structure.Option{
				Key:    mk.key,
				RawKey: mk.raw,
				Text:   structure.ClipOptionText(text[mk.end:end]),
			}
		}

		stem := trimStem(text[prevEnd:run[0].start])
		body := text[prevEnd:dEnd]
		if r == len(runs)-1 {
			body = text[prevEnd:]
		}
		segs = append(segs, Segment{
			Index:   r + 1,
			Text:    trimStem(body),
			Stem:    stem,
			Options: opts,
		})
		prevEnd = dEnd
	}
	return segs
}

func isRun(ms []marker) bool {
	for i, want := range []string{"A", "B", "C", "D"} {
		if ms[i].key != want {
			return false
		}
	}
	return true
}

// optionTailEnd finds where the text of a run's fourth option stops: at the
// first newline, at a sentence terminator, or at limit.
func optionTailEnd(text string, from, limit int) int {
	tail := text[from:limit]
	best := len(tail)
	if nl := strings.IndexByte(tail, '\n'); nl >= 0 && nl < best {
		best = nl
	}
	for i, r := range tail {
		if i >= best {
			break
		}
		switch r {
		case '。', '？', '！':
			best = i
		case '.', '?', '!':
			next := i + 1
			if next >= len(tail) || tail[next] == ' ' || tail[next] == '\t' || tail[next] == '\n' {
				best = i
			}
		}
		if best == i {
			break
		}
	}
	return from + best
}

func trimStem(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), ".?!。？！、,，;；"))
}
