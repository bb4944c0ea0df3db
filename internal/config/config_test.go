package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examlens/internal/ingest"
	"github.com/abhisek/examlens/internal/stream"
)

// isolate points the search paths at an empty directory and clears the
// vendor key variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"EXAMLENS_LLM_PROVIDER", "EXAMLENS_OPENAI_API_KEY", "EXAMLENS_ANTHROPIC_API_KEY",
		"EXAMLENS_LLM_OPENAI_API_KEY", "EXAMLENS_OPENAI_MODEL", "EXAMLENS_LLM_TIMEOUT"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.File)
	assert.Equal(t, "development", cfg.Log.Mode)
	assert.Equal(t, 3*time.Minute, cfg.LLM.StreamTimeout)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.Equal(t, ingest.DefaultConfig(), cfg.Analyzer())
}

func TestLoad_FileInSearchPath(t *testing.T) {
	dir := isolate(t)
	yaml := "kind:\n  passage_length_cutoff: 120\nllm:\n  provider: mock\n  stream_timeout: 90s\nstream:\n  emit_text: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "examlens.yaml"), []byte(yaml), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.File)
	assert.Equal(t, 120, cfg.Kind.PassageLengthCutoff)
	assert.Equal(t, 90*time.Second, cfg.LLM.StreamTimeout)

	sol := cfg.Solver()
	assert.Equal(t, 90*time.Second, sol.Timeout)
	assert.True(t, sol.Extractor.EmitText)
	assert.Len(t, sol.Validators, 2)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kind:\n  passage_length_cutoff: 120\n"), 0o644))
	t.Setenv("EXAMLENS_KIND_PASSAGE_LENGTH_CUTOFF", "150")
	t.Setenv("EXAMLENS_INGEST_WORKERS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, 150, cfg.Kind.PassageLengthCutoff)
	assert.Equal(t, 2, cfg.Analyzer().Workers)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kind: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLLMProvider(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.LLM.Provider = "mock"
	got, err := cfg.LLMProvider()
	require.NoError(t, err)
	assert.Equal(t, "mock", got.Provider)

	cfg.LLM.Provider = "openai"
	_, err = cfg.LLMProvider()
	assert.Error(t, err, "no key anywhere")

	t.Setenv("GEMINI_API_KEY", "g-key")
	cfg.LLM.MaxAttempts = 5
	got, err = cfg.LLMProvider()
	require.NoError(t, err)
	assert.Equal(t, "gemini", got.Provider)
	assert.Equal(t, "g-key", got.Gemini.APIKey)
	assert.Equal(t, 5, got.Retry.MaxAttempts)
}

func TestLoad_ShortAndNestedEnvNames(t *testing.T) {
	isolate(t)
	t.Setenv("EXAMLENS_LLM_PROVIDER", "openai")
	t.Setenv("EXAMLENS_OPENAI_API_KEY", "sk-short")
	t.Setenv("EXAMLENS_OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("EXAMLENS_LLM_TIMEOUT", "45s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-short", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.OpenAI.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)

	got, err := cfg.LLMProvider()
	require.NoError(t, err)
	assert.Equal(t, "openai", got.Provider)
	assert.Equal(t, 45*time.Second, got.Timeout)

	t.Setenv("EXAMLENS_LLM_OPENAI_API_KEY", "sk-nested")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-nested", cfg.LLM.OpenAI.APIKey, "nested name wins")
}

func TestLLMProvider_MissingKeyNamesSetting(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.LLM.Provider = "anthropic"
	_, err = cfg.LLMProvider()
	assert.ErrorContains(t, err, "llm.anthropic.api_key")
}

func TestSolver_KeepsPreviewDefault(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, stream.DefaultConfig(), cfg.Solver().Extractor)
}
