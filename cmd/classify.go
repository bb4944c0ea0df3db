package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examlens/internal/ingest"
	"github.com/abhisek/examlens/internal/report"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Classify a question by subject and kind",
	Long: "Prints the classification record as JSON. With --batch the input is\n" +
		"split into questions first and every segment is classified.",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := rawInput(cmd, args)
		if err != nil {
			return err
		}
		pretty, _ := cmd.Flags().GetBool("pretty")
		batch, _ := cmd.Flags().GetBool("batch")
		out := cmd.OutOrStdout()
		analyzer := ingest.NewAnalyzer(cfg.Analyzer())

		if batch {
			results, err := analyzer.AnalyzeBatch(cmd.Context(), in.Text)
			if err != nil {
				return fmt.Errorf("classify segments: %w", err)
			}
			if pretty {
				fmt.Fprintln(out, report.RenderBatch(results))
				return nil
			}
			return writeJSON(out, results)
		}

		c := analyzer.Analyze(in)
		if pretty {
			fmt.Fprintln(out, report.Render(c))
			return nil
		}
		return writeJSON(out, c)
	},
}

// rawInput reads the text and the --subject and --option hints.
func rawInput(cmd *cobra.Command, args []string) (ingest.RawInput, error) {
	text, err := readInput(cmd, args)
	if err != nil {
		return ingest.RawInput{}, err
	}
	in := ingest.RawInput{Text: text}
	in.SubjectHint, _ = cmd.Flags().GetString("subject")

	opts, _ := cmd.Flags().GetStringArray("option")
	for _, o := range opts {
		key, val, ok := strings.Cut(o, "=")
		if !ok {
			return ingest.RawInput{}, fmt.Errorf("invalid --option %q: want KEY=TEXT", o)
		}
		in.OptionHints = append(in.OptionHints, ingest.OptionHint{Key: key, Text: val})
	}
	return in, nil
}

func addHintFlags(c *cobra.Command) {
	c.Flags().String("subject", "", "Known subject (english, chinese, math...); skips detection")
	c.Flags().StringArray("option", nil, "Known answer option as KEY=TEXT (repeatable); skips option parsing")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	addInputFlags(classifyCmd)
	addHintFlags(classifyCmd)
	classifyCmd.Flags().Bool("pretty", false, "Render a terminal card instead of JSON")
	classifyCmd.Flags().Bool("batch", false, "Split multi-question input and classify each segment")
}
