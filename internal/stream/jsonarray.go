package stream

import (
	"strings"
)

// ArrayScanner tracks the top-level array in a growing buffer. It keeps its
// depth and string state between calls, so each Feed only scans bytes
// appended since the previous one. The buffer passed to Feed must only ever
// grow by appending.
type ArrayScanner struct {
	pos      int // next byte to scan
	start    int // offset of the opening '[', -1 until seen
	depth    int
	inString bool
	escape   bool
	pending  bool // unterminated scalar at depth 1

	// ends holds the offset just past each complete top-level element.
	ends []int

	closed bool
	end    int // offset just past the closing ']'
}

// NewArrayScanner returns a scanner waiting for an opening '['.
func NewArrayScanner() *ArrayScanner {
	return &ArrayScanner{start: -1}
}

// Feed scans the unseen tail of buf and reports how many elements became
// complete.
func (s *ArrayScanner) Feed(buf string) int {
	before := len(s.ends)
	for ; s.pos < len(buf) && !s.closed; s.pos++ {
		c := buf[s.pos]
		if s.start < 0 {
			if c == '[' {
				s.start = s.pos
				s.depth = 1
			}
			continue
		}

		if s.inString {
			switch {
			case s.escape:
				s.escape = false
			case c == '\\':
				s.escape = true
			case c == '"':
				s.inString = false
				if s.depth == 1 {
					s.ends = append(s.ends, s.pos+1)
				}
			}
			continue
		}

		switch c {
		case '"':
			s.inString = true
		case '{', '[':
			s.depth++
		case '}', ']':
			s.depth--
			switch s.depth {
			case 1:
				s.ends = append(s.ends, s.pos+1)
			case 0:
				s.finishScalar(s.pos)
				s.closed = true
				s.end = s.pos + 1
			}
		case ',':
			if s.depth == 1 {
				s.finishScalar(s.pos)
			}
		case ' ', '\t', '\r', '\n':
		default:
			if s.depth == 1 {
				s.pending = true
			}
		}
	}
	return len(s.ends) - before
}

func (s *ArrayScanner) finishScalar(at int) {
	if s.pending {
		s.ends = append(s.ends, at)
		s.pending = false
	}
}

// Restart returns a fresh scanner that resumes after the closing bracket of
// a closed array. On an open array it resumes at the current position.
func (s *ArrayScanner) Restart() *ArrayScanner {
	from := s.pos
	if s.closed {
		from = s.end
	}
	return &ArrayScanner{start: -1, pos: from}
}

// Elements returns the number of complete top-level elements seen so far.
func (s *ArrayScanner) Elements() int { return len(s.ends) }

// Closed reports whether the top-level array has been closed.
func (s *ArrayScanner) Closed() bool { return s.closed }

// Span returns the offsets of the opening bracket and the end of the last
// complete element, or ok=false before any element completes.
func (s *ArrayScanner) Span() (start, end int, ok bool) {
	if s.start < 0 || len(s.ends) == 0 {
		return 0, 0, false
	}
	return s.start, s.ends[len(s.ends)-1], true
}

// ElementEnd returns the end offset of element i.
func (s *ArrayScanner) ElementEnd(i int) int { return s.ends[i] }

// FindCompleteArray returns the longest prefix of buf that forms a complete
// JSON array literal: the whole array when it is closed, or the fully closed
// elements so far with a synthesized ']'. It returns false when no element
// has completed.
func FindCompleteArray(buf string) (string, bool) {
	s := NewArrayScanner()
	s.Feed(buf)
	if s.closed {
		return buf[s.start:s.end], true
	}
	start, end, ok := s.Span()
	if !ok {
		return "", false
	}
	return buf[start:end] + "]", true
}

// closedArrays returns every closed top-level array literal in buf, left to
// right. A bracketed aside in prose shows up as its own entry ahead of the
// real payload.
func closedArrays(buf string) []string {
	var out []string
	s := NewArrayScanner()
	for {
		s.Feed(buf)
		if !s.closed {
			return out
		}
		out = append(out, buf[s.start:s.end])
		s = s.Restart()
	}
}

// fencedBlock returns the body of the first Markdown code fence anywhere in
// content. An unterminated fence runs to the end of content.
func fencedBlock(content string) string {
	i := strings.Index(content, "```")
	if i < 0 {
		return ""
	}
	body := content[i+3:]
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return ""
	}
	body = body[nl+1:]
	if j := strings.Index(body, "```"); j >= 0 {
		body = body[:j]
	}
	return strings.TrimSpace(body)
}

// StripCodeFences removes a Markdown code fence (``` or ```json) wrapped
// around content. Content without a leading fence is returned trimmed.
func StripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return strings.TrimSpace(strings.TrimLeft(trimmed, "`"))
	}

	// Drop first fence line.
	lines = lines[1:]
	// Drop trailing fence if present.
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// extractArrayCandidate returns the text between the first '[' and the last
// ']' of content.
func extractArrayCandidate(content string) string {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}
