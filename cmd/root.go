package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/examlens/internal/config"
	"github.com/abhisek/examlens/internal/logger"
	"github.com/abhisek/examlens/internal/store"
)

var (
	cfg        *config.Config
	restoreLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "examlens",
	Short: "Classify and solve exam questions",
	Long: "examlens classifies pasted exam text by subject and question kind, splits\n" +
		"multi-question input, and streams per-question answers from an LLM.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(file)
		if err != nil {
			return err
		}
		cfg = loaded

		if m, _ := cmd.Flags().GetString("log-mode"); m != "" {
			cfg.Log.Mode = m
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := logger.New(cfg.Log.Mode, verbose)
		if err != nil {
			return err
		}
		restoreLog = logger.Install(l)
		if cfg.File != "" {
			zap.L().Debug("loaded config", zap.String("file", cfg.File))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		restoreLog()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./examlens.yaml or $HOME/.examlens/examlens.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides EXAMLENS_DB and store.path)")
	rootCmd.PersistentFlags().String("log-mode", "", "Log format: development or production")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(segmentCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(sanitizeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured store path, then EXAMLENS_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// readInput takes the question text from --file, the arguments, or stdin,
// in that order.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if f, _ := cmd.Flags().GetString("file"); f != "" {
		data, err := os.ReadFile(f)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no input: pass text, --file, or pipe it on stdin")
	}
	return string(data), nil
}

func addInputFlags(c *cobra.Command) {
	c.Flags().StringP("file", "f", "", "Read question text from a file")
}
