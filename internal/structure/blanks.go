// Package structure extracts the structural features of an exam question:
// numbered blanks, lettered options and the shape of the option list.
//
// Nothing here returns an error. Text that cannot be parsed yields zero
// blanks or zero options, which callers treat as a low-confidence signal.
package structure

import (
	"strconv"

	"github.com/abhisek/examlens/internal/pattern"
)

// ExtractNumberedBlanks returns every "(n)" placeholder in left-to-right
// order. Years and integers with three or more digits are skipped. A number
// that occurs twice yields two blanks.
func ExtractNumberedBlanks(text string) []Blank {
	matches := pattern.NumberedBlank.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	blanks := make([]Blank, 0, len(matches))
	for _, m := range matches {
		digits := pattern.NarrowDigits(text[m[2]:m[3]])
		if !pattern.IsBlankNumber(digits) {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		blanks = append(blanks, Blank{Index: n, Span: [2]int{m[0], m[1]}})
	}
	return blanks
}

// HasNumberedBlank reports whether text contains at least one numbered blank.
func HasNumberedBlank(text string) bool {
	for _, m := range pattern.NumberedBlank.FindAllStringSubmatchIndex(text, -1) {
		if pattern.IsBlankNumber(pattern.NarrowDigits(text[m[2]:m[3]])) {
			return true
		}
	}
	return false
}

// DistinctBlankCount returns the number of distinct blank indices.
func DistinctBlankCount(blanks []Blank) int {
	seen := make(map[int]struct{}, len(blanks))
	for _, b := range blanks {
		seen[b.Index] = struct{}{}
	}
	return len(seen)
}

// CountUnnumberedBlanks counts "( )" slots and underscore fill-in lines.
func CountUnnumberedBlanks(text string) int {
	return len(pattern.UnnumberedBlank.FindAllStringIndex(text, -1))
}
