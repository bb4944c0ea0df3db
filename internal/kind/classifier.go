package kind

import "github.com/abhisek/examlens/internal/subject"

// Variant refines a Cloze classification for callers that distinguish
// fill-in-the-blank vocabulary from whole-paragraph cloze.
type Variant string

const (
	VariantPassageCloze         Variant = "passage-cloze"
	VariantContextualCompletion Variant = "contextual-completion"
)

// Classification is the outcome of the kind decision table.
type Classification struct {
	Kind       Kind    `json:"kind"`
	Confidence float64 `json:"confidence"`

	// Reason is a short justification for QA and debugging. It never
	// drives control flow.
	Reason string `json:"reason"`

	// Signals lists the checks that fired, in evaluation order.
	Signals []string `json:"signals"`

	Rule    string  `json:"rule"`
	Legacy  Legacy  `json:"legacyKind"`
	Variant Variant `json:"variant,omitempty"`
}

// Config holds the kind classifier's tunables.
type Config struct {
	// PassageLengthCutoff separates a short stem from passage context, in
	// runes.
	PassageLengthCutoff int

	// SentenceRatio is the minimum share of sentence-shaped options for
	// discourse.
	SentenceRatio float64

	MinDiscourseOptions int
	MaxDiscourseOptions int

	// FallbackConfidence is reported when no rule matches.
	FallbackConfidence float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		PassageLengthCutoff: 200,
		SentenceRatio:       0.5,
		MinDiscourseOptions: 4,
		MaxDiscourseOptions: 6,
		FallbackConfidence:  0.35,
	}
}

// Classifier runs a rule chain over gathered signals.
type Classifier struct {
	cfg   Config
	rules []Rule
}

// New returns a Classifier using DefaultRules. Zero-valued fields of cfg
// take their defaults.
func New(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.PassageLengthCutoff <= 0 {
		cfg.PassageLengthCutoff = def.PassageLengthCutoff
	}
	if cfg.SentenceRatio <= 0 {
		cfg.SentenceRatio = def.SentenceRatio
	}
	if cfg.MinDiscourseOptions <= 0 {
		cfg.MinDiscourseOptions = def.MinDiscourseOptions
	}
	if cfg.MaxDiscourseOptions < cfg.MinDiscourseOptions {
		cfg.MaxDiscourseOptions = def.MaxDiscourseOptions
	}
	if cfg.FallbackConfidence <= 0 {
		cfg.FallbackConfidence = def.FallbackConfidence
	}
	return &Classifier{cfg: cfg, rules: DefaultRules()}
}

// WithRules replaces the rule chain.
func (c *Classifier) WithRules(rules ...Rule) *Classifier {
	c.rules = rules
	return c
}

var defaultClassifier = New(DefaultConfig())

// Classify gathers signals from in and classifies them with the default
// configuration.
func Classify(in Input) Classification { return defaultClassifier.Classify(in) }

// Classify gathers signals from in and runs the rule chain.
func (c *Classifier) Classify(in Input) Classification {
	return c.ClassifySignals(Gather(in))
}

// ClassifySignals runs the rule chain over precomputed signals. When no rule
// matches the question falls back to reading with reduced confidence.
func (c *Classifier) ClassifySignals(s Signals) Classification {
	out, rule, ok := RunRules(c.rules, s, c.cfg)
	if !ok {
		out = Classification{
			Kind:       Reading,
			Confidence: c.cfg.FallbackConfidence,
			Reason:     "no structural rule matched",
			Signals:    []string{"fallback"},
		}
		if s.Subject == subject.Math {
			out.Signals = append(out.Signals, "subject=math")
		}
		rule = "fallback"
	}
	out.Rule = rule
	out.Legacy = ToLegacy(out.Kind)
	return out
}
