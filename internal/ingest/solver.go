package ingest

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/examlens/internal/llm"
	"github.com/abhisek/examlens/internal/sanitize"
	"github.com/abhisek/examlens/internal/segment"
	"github.com/abhisek/examlens/internal/store"
	"github.com/abhisek/examlens/internal/stream"
	"github.com/abhisek/examlens/internal/structure"
)

// Session status values recorded in the event log.
const (
	StatusComplete  = "complete"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

// Solver answers raw exam text through a streaming completion service.
type Solver struct {
	streamer  llm.Streamer
	analyzer  *Analyzer
	extractor *stream.Extractor
	repo      store.EventRepo
	config    SolverConfig
}

// NewSolver creates a Solver. A nil repo disables session recording; a nil
// analyzer uses the default configuration.
func NewSolver(streamer llm.Streamer, analyzer *Analyzer, repo store.EventRepo, cfg SolverConfig) *Solver {
	if analyzer == nil {
		analyzer = defaultAnalyzer
	}
	return &Solver{
		streamer:  streamer,
		analyzer:  analyzer,
		extractor: stream.NewExtractor(cfg.Extractor),
		repo:      repo,
		config:    cfg,
	}
}

// Solve classifies in, opens a stream and yields the extractor's events
// with every answer sanitized and validated. Failures, including failing to
// open the stream, arrive as a terminal ErrorEvent. Stopping the iteration
// cancels the upstream request.
func (s *Solver) Solve(ctx context.Context, in RawInput) iter.Seq[stream.Event] {
	return func(yield func(stream.Event) bool) {
		start := time.Now()
		c := s.analyzer.Analyze(in)
		segs := segment.Split(in.Text)

		sess := &session{
			solver: s,
			ctx:    context.WithoutCancel(ctx),
			start:  start,
			data: store.SolveSessionData{
				GroupID:    uuid.NewString(),
				Subject:    string(c.Subject),
				Kind:       string(c.Kind),
				LegacyKind: string(c.LegacyKind),
				Expected:   expectedCount(c, segs),
			},
			options: answerOptions(s.analyzer.parser, c, segs),
		}

		runCtx, cancel := context.WithCancel(llm.WithGroup(llm.WithPurpose(ctx, "solve"), sess.data.GroupID))
		defer cancel()
		if s.config.Timeout > 0 {
			var stop context.CancelFunc
			runCtx, stop = context.WithTimeout(runCtx, s.config.Timeout)
			defer stop()
		}

		if !yield(stream.StatusEvent{Stage: "classified", Message: string(c.Kind)}) {
			sess.finish(StatusCancelled, "")
			return
		}

		src, err := s.streamer.Stream(runCtx, llm.Request{
			System:      systemPrompt,
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(c, segs, in.Text)}},
			MaxTokens:   s.config.MaxTokens,
			Temperature: s.config.Temperature,
		})
		if err != nil {
			msg := "open stream: " + err.Error()
			sess.finish(StatusError, msg)
			yield(stream.ErrorEvent{Message: msg})
			return
		}

		sc := stream.Context{
			Passage:   passageOf(c, segs),
			Questions: questionLabels(c, segs),
			GroupID:   sess.data.GroupID,
			Expected:  sess.data.Expected,
		}
		for ev := range s.extractor.Run(runCtx, src, sc) {
			ev = sess.process(ev)
			if !yield(ev) {
				sess.finish(StatusCancelled, "")
				return
			}
		}
	}
}

// session tracks one Solve for the event log.
type session struct {
	solver  *Solver
	ctx     context.Context
	start   time.Time
	data    store.SolveSessionData
	options [][]structure.Option
	done    bool
}

// process sanitizes and validates answers and records terminal events.
func (ss *session) process(ev stream.Event) stream.Event {
	switch e := ev.(type) {
	case stream.QuestionEvent:
		raw, fields := cleanAnswer(e.Question)
		e.Question = raw
		a := Answer{Position: e.Index, Raw: raw, Fields: fields}
		if e.Index < len(ss.options) {
			a.Options = ss.options[e.Index]
		}
		if verr := runValidators(ss.solver.config.Validators, a); verr != nil {
			e.Invalid = verr.Error()
			ss.data.Invalid++
		}
		return e
	case stream.CompleteEvent:
		for i, raw := range e.Answers {
			e.Answers[i], _ = cleanAnswer(raw)
		}
		e.Passage = sanitize.SanitizePassage(e.Passage)
		for i, q := range e.Questions {
			e.Questions[i] = sanitize.SanitizeInline(q)
		}
		ss.data.Decoded = len(e.Answers)
		ss.finish(StatusComplete, "")
		return e
	case stream.ErrorEvent:
		ss.finish(StatusError, e.Message)
	}
	return ev
}

func (ss *session) finish(status, msg string) {
	if ss.done {
		return
	}
	ss.done = true
	ss.data.Status = status
	ss.data.ErrorMessage = msg
	ss.data.DurationMs = time.Since(ss.start).Milliseconds()

	if ss.data.CountMismatch() && status == StatusComplete {
		zap.L().Info("decoded answer count differs from expected",
			zap.String("group_id", ss.data.GroupID),
			zap.Int("expected", ss.data.Expected),
			zap.Int("decoded", ss.data.Decoded))
	}

	repo := ss.solver.repo
	if repo == nil {
		return
	}
	if err := repo.AppendSolveSession(ss.ctx, ss.data); err != nil {
		zap.L().Warn("failed to record solve session",
			zap.String("group_id", ss.data.GroupID),
			zap.Error(err))
	}
}

// answerOptions lists the options each answer position refers to.
func answerOptions(p *structure.Parser, c Classification, segs []segment.Segment) [][]structure.Option {
	if len(segs) > 1 {
		out := make([][]structure.Option, len(segs))
		for i, s := range segs {
			out[i] = s.Options
			if out[i] == nil {
				out[i] = p.ParseOptions(s.Text)
			}
		}
		return out
	}
	if c.ExpectedAnswers() > 1 {
		// Blanks of one passage share a single option list only when there
		// is exactly one list; otherwise the choice check is skipped.
		return nil
	}
	return [][]structure.Option{c.Options}
}

// passageOf returns the passage echoed on the complete event, if the kind
// has one.
func passageOf(c Classification, segs []segment.Segment) string {
	if len(segs) != 1 {
		return ""
	}
	if c.Kind.HasPassage() {
		return segs[0].Stem
	}
	return ""
}
