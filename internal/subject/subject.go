// Package subject detects the academic subject of raw exam text.
//
// Two detectors live here. Detect scores keyword hits per subject and
// collapses to Unknown when the top two candidates are too close.
// DetectByDensity looks at character classes instead and feeds the kind
// classifier. Both are deterministic and need no network access.
package subject

// Subject is the academic subject of a question.
type Subject string

const (
	Math    Subject = "math"
	English Subject = "english"
	Chinese Subject = "chinese"
	Unknown Subject = "unknown"
)

// Parse maps a caller-supplied hint to a Subject. Unrecognized hints
// become Unknown.
func Parse(s string) Subject {
	switch Subject(s) {
	case Math, English, Chinese:
		return Subject(s)
	}
	return Unknown
}

// Candidate is one scored subject.
type Candidate struct {
	Subject    Subject `json:"subject"`
	Confidence float64 `json:"confidence"`
}

// Detection is the result of a subject detector.
type Detection struct {
	Subject    Subject    `json:"subject"`
	Confidence float64    `json:"confidence"`
	SecondBest *Candidate `json:"secondBest,omitempty"`

	// ConfidenceDelta is the gap between the best and second-best scores.
	// Zero when there was only one candidate.
	ConfidenceDelta float64 `json:"confidenceDelta,omitempty"`

	// Ambiguous is set when the result collapsed to Unknown because the top
	// two candidates were within the ambiguity margin.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// Config holds the scoring constants.
type Config struct {
	// BaseConfidence seeds every candidate with at least one hit.
	BaseConfidence float64

	// KeywordStep is added per distinct keyword hit.
	KeywordStep float64

	// MaxConfidence caps any keyword score.
	MaxConfidence float64

	// EnglishSentenceBoost is added to English when the text reads as an
	// English sentence.
	EnglishSentenceBoost float64

	// AmbiguityMargin is the minimum gap between the top two candidates
	// below which the result collapses to Unknown.
	AmbiguityMargin float64

	// LatinRatio is the Latin-letter share above which text can count as
	// an English sentence.
	LatinRatio float64

	// HanDensity is the Han share above which the density detector treats
	// text as Chinese.
	HanDensity float64

	// ReadingLength is the rune count above which a passage with question
	// markers or lettered options is treated as an English reading item.
	ReadingLength int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		BaseConfidence:       0.4,
		KeywordStep:          0.1,
		MaxConfidence:        0.98,
		EnglishSentenceBoost: 0.3,
		AmbiguityMargin:      0.03,
		LatinRatio:           0.6,
		HanDensity:           0.3,
		ReadingLength:        300,
	}
}

// Detector runs both detectors with one Config.
type Detector struct {
	cfg Config
}

// New creates a Detector.
func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

var defaultDetector = New(DefaultConfig())

// Detect runs the keyword scorer with the default config.
func Detect(text string) Detection { return defaultDetector.Detect(text) }

// DetectByDensity runs the character-density detector with the default
// config.
func DetectByDensity(text string) Detection { return defaultDetector.DetectByDensity(text) }
