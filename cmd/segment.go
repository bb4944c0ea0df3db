package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examlens/internal/segment"
)

var segmentCmd = &cobra.Command{
	Use:   "segment [text]",
	Short: "Split multi-question input into segments",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		segs := segment.Split(text)
		if count, _ := cmd.Flags().GetBool("count"); count {
			fmt.Fprintln(cmd.OutOrStdout(), len(segs))
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), segs)
	},
}

func init() {
	addInputFlags(segmentCmd)
	segmentCmd.Flags().Bool("count", false, "Print only the number of segments")
}
