package structure

// Blank is a numbered placeholder such as "(3)" found in a passage.
type Blank struct {
	// Index is the 1-based number written inside the parentheses.
	Index int `json:"index"`

	// Span is the [start, end) byte range of the whole "( n )" token.
	Span [2]int `json:"span"`
}

// OptionMarker is an option letter as it appears in the source, before
// width or case normalization.
type OptionMarker struct {
	Key  string `json:"key"`
	Span [2]int `json:"span"`
}

// Option is one answer choice. Key is always half-width uppercase.
type Option struct {
	Key    string `json:"key"`
	RawKey string `json:"-"`
	Text   string `json:"text"`
}

// ChoiceShape describes what an option list looks like.
type ChoiceShape string

const (
	ShapeSentences ChoiceShape = "sentences"
	ShapeWords     ChoiceShape = "words/phrases"
	ShapeMixed     ChoiceShape = "mixed"
	ShapeNone      ChoiceShape = "none"
)

// ShapeStats carries the counts behind a ChoiceShape verdict.
type ShapeStats struct {
	Shape         ChoiceShape `json:"shape"`
	Total         int         `json:"total"`
	Sentences     int         `json:"sentences"`
	Words         int         `json:"words"`
	SentenceRatio float64     `json:"sentenceRatio"`
	WordRatio     float64     `json:"wordRatio"`
}

// Config holds the parser's tunables.
type Config struct {
	// ShapeRatio is the share of options that must agree before a list is
	// called "sentences" or "words/phrases".
	ShapeRatio float64

	// MaxOptionLength caps option text, in runes.
	MaxOptionLength int

	// MinSentenceTokens is the token floor for a sentence-shaped option.
	MinSentenceTokens int

	// MaxPhraseTokens is the token ceiling for a word/phrase option.
	MaxPhraseTokens int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		ShapeRatio:        0.6,
		MaxOptionLength:   160,
		MinSentenceTokens: 4,
		MaxPhraseTokens:   5,
	}
}
