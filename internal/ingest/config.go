package ingest

import (
	"time"

	"github.com/abhisek/examlens/internal/kind"
	"github.com/abhisek/examlens/internal/stream"
	"github.com/abhisek/examlens/internal/structure"
	"github.com/abhisek/examlens/internal/subject"
)

// Config controls classification.
type Config struct {
	Subject   subject.Config
	Structure structure.Config
	Kind      kind.Config

	// Workers bounds concurrent segment classification in AnalyzeBatch.
	Workers int
}

// DefaultConfig returns the defaults of every stage.
func DefaultConfig() Config {
	return Config{
		Subject:   subject.DefaultConfig(),
		Structure: structure.DefaultConfig(),
		Kind:      kind.DefaultConfig(),
		Workers:   4,
	}
}

// SolverConfig controls the solve pipeline.
type SolverConfig struct {
	// Validators run in order on every decoded answer. A failure marks the
	// question event invalid; it is still delivered.
	Validators []Validator

	Extractor stream.Config

	// MaxTokens is the token budget for the streamed reply.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// Timeout bounds the whole stream. Zero disables it.
	Timeout time.Duration
}

// DefaultSolverConfig returns a SolverConfig with the standard validator
// chain.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Validators: []Validator{
			&SchemaValidator{},
			&ChoiceValidator{},
		},
		Extractor:   stream.DefaultConfig(),
		MaxTokens:   2048,
		Temperature: 0,
		Timeout:     3 * time.Minute,
	}
}
