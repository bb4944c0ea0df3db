package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examlens/internal/kind"
	"github.com/abhisek/examlens/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show solve session statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetDuration("since")
		recent, _ := cmd.Flags().GetInt("recent")
		kindFlag, _ := cmd.Flags().GetString("kind")
		out := cmd.OutOrStdout()

		opts := store.QueryOpts{}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		if kindFlag != "" {
			k, ok := kind.Normalize(kindFlag)
			if !ok {
				return fmt.Errorf("unknown kind %q", kindFlag)
			}
			opts.Kind = string(k)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		sessions, err := s.EventRepo().QuerySolveSessions(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No solve sessions recorded yet.")
			return nil
		}

		type row struct {
			kind     string
			sessions int
			complete int
			mismatch int
			invalid  int
			totalMs  int64
		}
		byKind := map[string]*row{}
		for _, ss := range sessions {
			r, ok := byKind[ss.Kind]
			if !ok {
				r = &row{kind: ss.Kind}
				byKind[ss.Kind] = r
			}
			r.sessions++
			if ss.Status == "complete" {
				r.complete++
			}
			if ss.Mismatch {
				r.mismatch++
			}
			r.invalid += ss.Invalid
			r.totalMs += ss.DurationMs
		}
		rows := make([]*row, 0, len(byKind))
		for _, r := range byKind {
			rows = append(rows, r)
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].sessions != rows[j].sessions {
				return rows[i].sessions > rows[j].sessions
			}
			return rows[i].kind < rows[j].kind
		})

		fmt.Fprintln(out, "Solve Sessions by Kind")
		fmt.Fprintln(out, strings.Repeat("─", 72))
		fmt.Fprintf(out, "%-14s  %8s  %8s  %9s  %8s  %10s\n",
			"Kind", "Sessions", "Complete", "Mismatch", "Invalid", "Avg Ms")
		fmt.Fprintln(out, strings.Repeat("─", 72))
		for _, r := range rows {
			fmt.Fprintf(out, "%-14s  %8d  %8d  %9d  %8d  %10d\n",
				r.kind, r.sessions, r.complete, r.mismatch, r.invalid, r.totalMs/int64(r.sessions))
		}

		if recent > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Recent Sessions")
			fmt.Fprintln(out, strings.Repeat("─", 72))
			for _, ss := range sessions[:min(recent, len(sessions))] {
				flag := ""
				if ss.Mismatch {
					flag = fmt.Sprintf("  decoded %d of %d", ss.Decoded, ss.Expected)
				}
				fmt.Fprintf(out, "%s  %-8s  %-10s  %-9s%s\n",
					ss.Timestamp.Local().Format("2006-01-02 15:04:05"),
					truncate(ss.GroupID, 8), ss.Kind, ss.Status, flag)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Duration("since", 0, "Only count sessions newer than this (e.g. 24h)")
	statsCmd.Flags().IntP("recent", "n", 5, "Also list this many recent sessions")
	statsCmd.Flags().String("kind", "", "Only count sessions of this kind (aliases and legacy tags accepted)")
}
