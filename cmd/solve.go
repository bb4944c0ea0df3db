package cmd

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/abhisek/examlens/internal/ingest"
	"github.com/abhisek/examlens/internal/llm"
	"github.com/abhisek/examlens/internal/report"
	"github.com/abhisek/examlens/internal/sse"
	"github.com/abhisek/examlens/internal/store"
	"github.com/abhisek/examlens/internal/stream"
)

var solveCmd = &cobra.Command{
	Use:   "solve [text]",
	Short: "Stream answers for a question from the configured LLM",
	Long: "Classifies the input, asks the LLM for a JSON array of answers and\n" +
		"prints each answer as soon as it is decoded. Output is Server-Sent\n" +
		"Events frames unless --pretty is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := rawInput(cmd, args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var repo store.EventRepo
		noRecord, _ := cmd.Flags().GetBool("no-record")
		if !noRecord && !cfg.Store.Disabled {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			repo = s.EventRepo()
		}

		lcfg, err := cfg.LLMProvider()
		if p, _ := cmd.Flags().GetString("provider"); p != "" {
			lcfg.Provider = p
			err = lcfg.Validate()
		}
		if err != nil {
			return fmt.Errorf("llm config: %w", err)
		}
		provider, err := llm.NewProvider(ctx, lcfg, repo)
		if err != nil {
			return err
		}
		if mock, ok := provider.(*llm.MockProvider); ok {
			reply, _ := cmd.Flags().GetString("mock-reply")
			if reply == "" {
				return errors.New("the mock provider needs --mock-reply")
			}
			mock.AddResponse(llm.MockResponse{Chunks: splitChunks(reply, 16)})
		}

		solver := ingest.NewSolver(provider, ingest.NewAnalyzer(cfg.Analyzer()), repo, cfg.Solver())
		var failure *stream.ErrorEvent
		events := watchFailure(solver.Solve(ctx, in), &failure)

		out := cmd.OutOrStdout()
		if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
			for e := range events {
				fmt.Fprintln(out, report.RenderEvent(e))
			}
		} else {
			w := sse.NewWriter(out)
			defer w.Close()
			if err := sse.Pipe(w, events); err != nil {
				return fmt.Errorf("write events: %w", err)
			}
		}

		if failure != nil {
			return fmt.Errorf("solve failed: %s", failure.Message)
		}
		return nil
	},
}

// watchFailure passes seq through and records a terminal error event.
func watchFailure(seq iter.Seq[stream.Event], failure **stream.ErrorEvent) iter.Seq[stream.Event] {
	return func(yield func(stream.Event) bool) {
		for e := range seq {
			if ev, ok := e.(stream.ErrorEvent); ok {
				*failure = &ev
			}
			if !yield(e) {
				return
			}
		}
	}
}

// splitChunks cuts s into pieces of at most n runes.
func splitChunks(s string, n int) []string {
	runes := []rune(s)
	var out []string
	for len(runes) > 0 {
		k := min(n, len(runes))
		out = append(out, string(runes[:k]))
		runes = runes[k:]
	}
	return out
}

func init() {
	addInputFlags(solveCmd)
	addHintFlags(solveCmd)
	solveCmd.Flags().Bool("pretty", false, "Print one readable line per event instead of SSE frames")
	solveCmd.Flags().String("provider", "", "Override llm.provider (anthropic, openai, gemini, openrouter, mock)")
	solveCmd.Flags().String("mock-reply", "", "Canned reply streamed by the mock provider")
	solveCmd.Flags().Bool("no-record", false, "Do not write LLM and solve events to the database")
}
