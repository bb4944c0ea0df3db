package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examlens/internal/sanitize"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [text]",
	Short: "Clean model-produced markup with the inline or passage profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		if strip, _ := cmd.Flags().GetBool("strip"); strip {
			fmt.Fprintln(cmd.OutOrStdout(), sanitize.StripAllTags(text))
			return nil
		}
		profile, _ := cmd.Flags().GetString("profile")
		fmt.Fprintln(cmd.OutOrStdout(), sanitize.Sanitize(text, sanitize.ParseProfile(profile)))
		return nil
	},
}

func init() {
	addInputFlags(sanitizeCmd)
	sanitizeCmd.Flags().StringP("profile", "p", string(sanitize.Inline), "Sanitizer profile: inline or passage")
	sanitizeCmd.Flags().Bool("strip", false, "Remove every tag and keep only text")
}
