// Package kind assigns one of seven canonical question kinds to a parsed
// exam question and converts between canonical kinds, the legacy E1-E8
// tags and the free-form labels found in older stored data.
package kind

// Kind is a canonical question kind.
type Kind string

const (
	Vocab       Kind = "vocab"
	Grammar     Kind = "grammar"
	Cloze       Kind = "cloze"
	Reading     Kind = "reading"
	Discourse   Kind = "discourse"
	Translation Kind = "translation"
	Writing     Kind = "writing"

	// Unknown is the lenient-mode sentinel. It is not a canonical kind.
	Unknown Kind = "unknown"
)

// All returns the canonical kinds in display order.
func All() []Kind {
	return []Kind{Vocab, Grammar, Cloze, Reading, Discourse, Translation, Writing}
}

// IsCanonical reports whether k is one of the seven canonical kinds.
func (k Kind) IsCanonical() bool {
	switch k {
	case Vocab, Grammar, Cloze, Reading, Discourse, Translation, Writing:
		return true
	}
	return false
}

// HasPassage reports whether questions of kind k come with a passage the
// answers refer back to.
func (k Kind) HasPassage() bool {
	return k == Reading || k == Cloze || k == Discourse
}

// Legacy is a kind tag from the older E1-E8 scheme.
type Legacy string

const (
	E1            Legacy = "E1" // vocabulary
	E2            Legacy = "E2" // grammar
	E3            Legacy = "E3" // cloze
	E4            Legacy = "E4" // reading comprehension
	E5            Legacy = "E5" // translation
	E6            Legacy = "E6" // paragraph reordering
	E7            Legacy = "E7" // paragraph-level cloze
	E8            Legacy = "E8" // writing
	LegacyUnknown Legacy = "unknown"
)

// ToLegacy projects a canonical kind onto the legacy scheme. Discourse maps
// to E6; E7 cannot be recovered from the canonical kind alone.
func ToLegacy(k Kind) Legacy {
	switch k {
	case Vocab:
		return E1
	case Grammar:
		return E2
	case Cloze:
		return E3
	case Reading:
		return E4
	case Translation:
		return E5
	case Discourse:
		return E6
	case Writing:
		return E8
	}
	return LegacyUnknown
}

// FromLegacy maps a legacy tag to its canonical kind. E6 and E7 both map
// to Discourse.
func FromLegacy(l Legacy) (Kind, bool) {
	switch l {
	case E1:
		return Vocab, true
	case E2:
		return Grammar, true
	case E3:
		return Cloze, true
	case E4:
		return Reading, true
	case E5:
		return Translation, true
	case E6, E7:
		return Discourse, true
	case E8:
		return Writing, true
	}
	return "", false
}
