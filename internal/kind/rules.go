package kind

import (
	"fmt"

	"github.com/abhisek/examlens/internal/structure"
	"github.com/abhisek/examlens/internal/subject"
)

// Rule is one branch of the kind decision table.
// Match returns false when the rule does not apply.
type Rule interface {
	Name() string
	Match(s Signals, cfg Config) (Classification, bool)
}

// DefaultRules returns the rules in priority order. Open-response questions
// are settled first since every later rule needs blanks or a 4-way option
// block.
func DefaultRules() []Rule {
	return []Rule{
		&ChineseTranslationRule{},
		&OpenResponseRule{},
		&DiscourseRule{},
		&ClozeRule{},
		&GrammarRule{},
		&VocabRule{},
		&PassageReadingRule{},
	}
}

// RunRules executes rules in order and returns the first match.
func RunRules(rules []Rule, s Signals, cfg Config) (Classification, string, bool) {
	for _, r := range rules {
		if c, ok := r.Match(s, cfg); ok {
			return c, r.Name(), true
		}
	}
	return Classification{}, "", false
}

// ChineseTranslationRule matches a Chinese-subject prompt carrying a
// translation cue, whatever its blanks or options: the task is rendering the
// Chinese text into English.
type ChineseTranslationRule struct{}

func (r *ChineseTranslationRule) Name() string { return "chinese-translation" }

func (r *ChineseTranslationRule) Match(s Signals, cfg Config) (Classification, bool) {
	if s.Subject != subject.Chinese || !s.HasTranslationCue {
		return Classification{}, false
	}
	return Classification{
		Kind: Translation, Confidence: 0.9,
		Reason:  "Chinese source text with a translation instruction",
		Signals: []string{"subject=chinese", "translationCue"},
	}, true
}

// englishOnly reports whether the English-exam rules (discourse, cloze,
// grammar, vocab) must skip s. Math questions with lettered options are
// not vocabulary or grammar items.
func englishOnly(s Signals) bool { return s.Subject == subject.Math }

// OpenResponseRule handles questions with no numbered blank and no 4-way
// option block: translation, writing or reading.
type OpenResponseRule struct{}

func (r *OpenResponseRule) Name() string { return "open-response" }

func (r *OpenResponseRule) Match(s Signals, cfg Config) (Classification, bool) {
	if s.NumberedBlanks != 0 || s.OptionCount == 4 {
		return Classification{}, false
	}
	sig := []string{"noBlanks", fmt.Sprintf("optionCount=%d", s.OptionCount)}

	switch {
	case s.HasTranslationCue:
		return Classification{
			Kind: Translation, Confidence: 0.8,
			Reason:  "no blanks or option block; translation instruction present",
			Signals: append(sig, "translationCue"),
		}, true
	case s.HasWritingCue:
		return Classification{
			Kind: Writing, Confidence: 0.8,
			Reason:  "no blanks or option block; writing instruction present",
			Signals: append(sig, "writingCue"),
		}, true
	case (s.HasQuestionMarker || s.HasEnumeratedItems) && s.OptionCount >= 2:
		marker := "questionMarker"
		if !s.HasQuestionMarker {
			marker = "enumeratedItems"
		}
		return Classification{
			Kind: Reading, Confidence: 0.75,
			Reason:  "question markers combined with lettered options",
			Signals: append(sig, marker),
		}, true
	case s.PassageLength >= cfg.PassageLengthCutoff:
		return Classification{
			Kind: Reading, Confidence: 0.6,
			Reason:  "long passage without blanks",
			Signals: append(sig, fmt.Sprintf("passageLength>=%d", cfg.PassageLengthCutoff)),
		}, true
	case s.OptionCount >= 2:
		return Classification{
			Kind: Reading, Confidence: 0.45,
			Reason:  "short passage with lettered options",
			Signals: sig,
		}, true
	}
	return Classification{
		Kind: Writing, Confidence: 0.4,
		Reason:  "short prompt with no blanks and no options",
		Signals: sig,
	}, true
}

// DiscourseRule matches sentence-insertion passages: numbered gaps in a long
// passage with 4-6 sentence-shaped options.
type DiscourseRule struct{}

func (r *DiscourseRule) Name() string { return "discourse" }

func (r *DiscourseRule) Match(s Signals, cfg Config) (Classification, bool) {
	if englishOnly(s) || s.DistinctBlanks < 2 ||
		s.PassageLength < cfg.PassageLengthCutoff ||
		s.OptionCount < cfg.MinDiscourseOptions || s.OptionCount > cfg.MaxDiscourseOptions ||
		s.Shape != structure.ShapeSentences ||
		s.SentenceRatio < cfg.SentenceRatio {
		return Classification{}, false
	}
	return Classification{
		Kind:       Discourse,
		Confidence: 0.85,
		Reason:     "numbered gaps in a long passage with sentence-shaped options",
		Signals: []string{
			fmt.Sprintf("numberedBlanks=%d", s.NumberedBlanks),
			fmt.Sprintf("passageLength>=%d", cfg.PassageLengthCutoff),
			fmt.Sprintf("optionCount=%d", s.OptionCount),
			"shape=sentences",
			fmt.Sprintf("sentenceRatio>=%v", cfg.SentenceRatio),
		},
	}, true
}

// ClozeRule matches any remaining passage with two or more numbered blanks.
// Short passages carry the contextual-completion variant.
type ClozeRule struct{}

func (r *ClozeRule) Name() string { return "cloze" }

func (r *ClozeRule) Match(s Signals, cfg Config) (Classification, bool) {
	if englishOnly(s) || s.DistinctBlanks < 2 {
		return Classification{}, false
	}
	c := Classification{
		Kind:    Cloze,
		Variant: VariantPassageCloze,
		Signals: []string{fmt.Sprintf("numberedBlanks=%d", s.NumberedBlanks)},
	}
	if s.PassageLength < cfg.PassageLengthCutoff {
		c.Variant = VariantContextualCompletion
	}

	switch {
	case s.Shape == structure.ShapeWords:
		c.Confidence = 0.85
		c.Reason = "numbered blanks with word or phrase options"
		c.Signals = append(c.Signals, "shape=words/phrases")
	case s.OptionCount > 0:
		c.Confidence = 0.7
		c.Reason = "numbered blanks with " + string(s.Shape) + " options"
		c.Signals = append(c.Signals, "shape="+string(s.Shape))
	default:
		c.Confidence = 0.6
		c.Reason = "numbered blanks without parsed options"
		c.Signals = append(c.Signals, "optionCount=0")
	}
	return c, true
}

// GrammarRule matches a single sentence with 4 options, no blank of either
// kind and a tense or relative-clause cue.
type GrammarRule struct{}

func (r *GrammarRule) Name() string { return "grammar" }

func (r *GrammarRule) Match(s Signals, cfg Config) (Classification, bool) {
	if englishOnly(s) || s.OptionCount != 4 || s.NumberedBlanks != 0 || s.UnnumberedBlanks != 0 ||
		s.SentenceCount > 1 || !s.HasGrammarCue {
		return Classification{}, false
	}
	return Classification{
		Kind:       Grammar,
		Confidence: 0.75,
		Reason:     "single sentence with 4 options and a grammatical cue",
		Signals:    []string{"optionCount=4", "noBlanks", "singleSentence", "grammarCue"},
	}, true
}

// VocabRule matches a short stem with exactly 4 options and at most one
// blank.
type VocabRule struct{}

func (r *VocabRule) Name() string { return "vocab" }

func (r *VocabRule) Match(s Signals, cfg Config) (Classification, bool) {
	if englishOnly(s) || s.OptionCount != 4 || s.NumberedBlanks > 1 || s.UnnumberedBlanks > 1 ||
		s.PassageLength >= cfg.PassageLengthCutoff {
		return Classification{}, false
	}
	c := Classification{
		Kind:       Vocab,
		Confidence: 0.7,
		Reason:     "short stem with 4 options",
		Signals:    []string{"optionCount=4"},
	}
	switch {
	case s.UnnumberedBlanks == 1:
		c.Confidence = 0.8
		c.Reason = "one unnumbered blank with 4 options"
		c.Signals = append(c.Signals, "unnumberedBlanks=1")
	case s.NumberedBlanks == 1:
		c.Signals = append(c.Signals, "numberedBlanks=1")
	default:
		c.Signals = append(c.Signals, "noBlanks")
	}
	return c, true
}

// PassageReadingRule matches a long passage followed by a 4-way option
// block and no numbered blanks.
type PassageReadingRule struct{}

func (r *PassageReadingRule) Name() string { return "passage-reading" }

func (r *PassageReadingRule) Match(s Signals, cfg Config) (Classification, bool) {
	if s.NumberedBlanks != 0 || s.OptionCount != 4 || s.PassageLength < cfg.PassageLengthCutoff {
		return Classification{}, false
	}
	c := Classification{
		Kind:       Reading,
		Confidence: 0.6,
		Reason:     "long passage followed by a 4-way option block",
		Signals:    []string{"optionCount=4", "noBlanks", fmt.Sprintf("passageLength>=%d", cfg.PassageLengthCutoff)},
	}
	if s.HasQuestionMarker {
		c.Confidence = 0.7
		c.Signals = append(c.Signals, "questionMarker")
	}
	return c, true
}
