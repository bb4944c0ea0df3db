package ingest

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/examlens/internal/kind"
	"github.com/abhisek/examlens/internal/pattern"
	"github.com/abhisek/examlens/internal/segment"
	"github.com/abhisek/examlens/internal/structure"
	"github.com/abhisek/examlens/internal/subject"
)

// Analyzer classifies questions. It holds no mutable state and is safe for
// concurrent use.
type Analyzer struct {
	subjects *subject.Detector
	parser   *structure.Parser
	kinds    *kind.Classifier
	workers  int
}

// NewAnalyzer builds an Analyzer from cfg.
func NewAnalyzer(cfg Config) *Analyzer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultConfig().Workers
	}
	return &Analyzer{
		subjects: subject.New(cfg.Subject),
		parser:   structure.New(cfg.Structure),
		kinds:    kind.New(cfg.Kind),
		workers:  workers,
	}
}

var defaultAnalyzer = NewAnalyzer(DefaultConfig())

// Analyze classifies in with the default configuration.
func Analyze(in RawInput) Classification { return defaultAnalyzer.Analyze(in) }

// AnalyzeBatch segments text and classifies each segment with the default
// configuration.
func AnalyzeBatch(ctx context.Context, text string) ([]SegmentResult, error) {
	return defaultAnalyzer.AnalyzeBatch(ctx, text)
}

// Analyze parses structure, detects the subject and assigns a kind. Input
// with no recognizable structure comes back as a low-confidence result.
func (a *Analyzer) Analyze(in RawInput) Classification {
	det := a.detectSubject(in)
	blanks := structure.ExtractNumberedBlanks(in.Text)

	opts := a.hintOptions(in.OptionHints)
	if opts == nil {
		opts = a.parser.ParseOptions(in.Text)
	}

	kc := a.kinds.Classify(kind.Input{
		Text:    in.Text,
		Blanks:  blanks,
		Options: opts,
		Subject: det.Subject,
		Parser:  a.parser,
	})

	if blanks == nil {
		blanks = []structure.Blank{}
	}
	if opts == nil {
		opts = []structure.Option{}
	}
	return Classification{
		Subject:           det.Subject,
		SubjectConfidence: det.Confidence,
		SubjectAmbiguous:  det.Ambiguous,
		SecondBest:        det.SecondBest,
		Kind:              kc.Kind,
		KindConfidence:    kc.Confidence,
		Reason:            kc.Reason,
		Signals:           kc.Signals,
		Variant:           kc.Variant,
		LegacyKind:        kc.Legacy,
		Blanks:            blanks,
		Options:           opts,
	}
}

// detectSubject honours a known hint, then tries keywords, then character
// density. An ambiguous keyword verdict stays Unknown.
func (a *Analyzer) detectSubject(in RawInput) subject.Detection {
	if hint := subject.Parse(strings.ToLower(strings.TrimSpace(in.SubjectHint))); hint != subject.Unknown {
		return subject.Detection{Subject: hint, Confidence: 1}
	}
	det := a.subjects.Detect(in.Text)
	if det.Subject == subject.Unknown && !det.Ambiguous {
		return a.subjects.DetectByDensity(in.Text)
	}
	return subject.GuardMath(in.Text, det)
}

// hintOptions normalizes caller hints, dropping empty and duplicate keys.
func (a *Analyzer) hintOptions(hints []OptionHint) []structure.Option {
	if len(hints) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(hints))
	var out []structure.Option
	for _, h := range hints {
		key := pattern.NormalizeOptionKey(strings.Trim(h.Key, "()（）.、． "))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, structure.Option{
			Key:    key,
			RawKey: h.Key,
			Text:   a.parser.ClipOptionText(strings.TrimSpace(h.Text)),
		})
	}
	return out
}

// AnalyzeBatch splits text into segments and classifies them concurrently.
// Results keep segment order. A segment that ends in a 4-option run is
// classified with those options as hints. The only error is ctx's.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, text string) ([]SegmentResult, error) {
	segs := segment.Split(text)
	out := make([]SegmentResult, len(segs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, seg := range segs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in := RawInput{Text: seg.Text}
			for _, o := range seg.Options {
				in.OptionHints = append(in.OptionHints, OptionHint{Key: o.Key, Text: o.Text})
			}
			out[i] = SegmentResult{Segment: seg, Classification: a.Analyze(in)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
