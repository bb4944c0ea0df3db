// Package logger builds the zap logger shared through zap.L().
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger for mode: "prod"/"production" writes JSON, anything
// else writes the development console format. Both go to stderr so stdout
// stays free for command output. verbose lowers the level to debug.
func New(mode string, verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	case "", "dev", "development":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log mode %q", mode)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// Install makes l the global logger. The returned func restores the
// previous one and flushes l.
func Install(l *zap.Logger) func() {
	restore := zap.ReplaceGlobals(l)
	return func() {
		_ = l.Sync()
		restore()
	}
}
