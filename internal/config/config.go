// Package config loads examlens settings from defaults, an optional YAML
// file and EXAMLENS_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/examlens/internal/ingest"
	"github.com/abhisek/examlens/internal/kind"
	"github.com/abhisek/examlens/internal/llm"
	"github.com/abhisek/examlens/internal/stream"
	"github.com/abhisek/examlens/internal/structure"
	"github.com/abhisek/examlens/internal/subject"
)

// EnvPrefix is prepended to every environment key. Nested keys join with
// underscores: llm.openai.model reads EXAMLENS_LLM_OPENAI_MODEL.
const EnvPrefix = "EXAMLENS"

// Config is the merged configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Subject   SubjectConfig   `mapstructure:"subject"`
	Kind      KindConfig      `mapstructure:"kind"`
	Structure StructureConfig `mapstructure:"structure"`
	Stream    StreamConfig    `mapstructure:"stream"`
	Ingest    IngestConfig    `mapstructure:"ingest"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type LogConfig struct {
	// Mode is "development" or "production".
	Mode string `mapstructure:"mode"`
}

type StoreConfig struct {
	// Path of the SQLite event log. Empty resolves the XDG default.
	Path string `mapstructure:"path"`

	// Disabled turns event recording off.
	Disabled bool `mapstructure:"disabled"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type LLMConfig struct {
	Provider      string         `mapstructure:"provider"`
	Anthropic     ProviderConfig `mapstructure:"anthropic"`
	OpenAI        ProviderConfig `mapstructure:"openai"`
	Gemini        ProviderConfig `mapstructure:"gemini"`
	OpenRouter    ProviderConfig `mapstructure:"openrouter"`
	Timeout       time.Duration  `mapstructure:"timeout"`
	StreamTimeout time.Duration  `mapstructure:"stream_timeout"`
	MaxAttempts   int            `mapstructure:"max_attempts"`
	MaxTokens     int            `mapstructure:"max_tokens"`
	Temperature   float64        `mapstructure:"temperature"`
}

type SubjectConfig struct {
	BaseConfidence       float64 `mapstructure:"base_confidence"`
	KeywordStep          float64 `mapstructure:"keyword_step"`
	MaxConfidence        float64 `mapstructure:"max_confidence"`
	EnglishSentenceBoost float64 `mapstructure:"english_sentence_boost"`
	AmbiguityMargin      float64 `mapstructure:"ambiguity_margin"`
	LatinRatio           float64 `mapstructure:"latin_ratio"`
	HanDensity           float64 `mapstructure:"han_density"`
	ReadingLength        int     `mapstructure:"reading_length"`
}

type KindConfig struct {
	PassageLengthCutoff int     `mapstructure:"passage_length_cutoff"`
	SentenceRatio       float64 `mapstructure:"sentence_ratio"`
	MinDiscourseOptions int     `mapstructure:"min_discourse_options"`
	MaxDiscourseOptions int     `mapstructure:"max_discourse_options"`
	FallbackConfidence  float64 `mapstructure:"fallback_confidence"`
}

type StructureConfig struct {
	ShapeRatio        float64 `mapstructure:"shape_ratio"`
	MaxOptionLength   int     `mapstructure:"max_option_length"`
	MinSentenceTokens int     `mapstructure:"min_sentence_tokens"`
	MaxPhraseTokens   int     `mapstructure:"max_phrase_tokens"`
}

type StreamConfig struct {
	ErrorPreviewLength int  `mapstructure:"error_preview_length"`
	EmitText           bool `mapstructure:"emit_text"`
}

type IngestConfig struct {
	Workers int `mapstructure:"workers"`
}

// Load reads configuration. When file is empty, examlens.yaml is looked up
// in the working directory and then in $HOME/.examlens; a missing file is
// not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindShortEnv(v); err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("examlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.examlens")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}

// shortEnv maps keys to the unnested names the CLI has always accepted, such
// as EXAMLENS_OPENAI_API_KEY. The nested name is checked first.
var shortEnv = map[string]string{
	"llm.anthropic.api_key":  "EXAMLENS_ANTHROPIC_API_KEY",
	"llm.anthropic.model":    "EXAMLENS_ANTHROPIC_MODEL",
	"llm.openai.api_key":     "EXAMLENS_OPENAI_API_KEY",
	"llm.openai.model":       "EXAMLENS_OPENAI_MODEL",
	"llm.openai.base_url":    "EXAMLENS_OPENAI_BASE_URL",
	"llm.gemini.api_key":     "EXAMLENS_GEMINI_API_KEY",
	"llm.gemini.model":       "EXAMLENS_GEMINI_MODEL",
	"llm.openrouter.api_key": "EXAMLENS_OPENROUTER_API_KEY",
	"llm.openrouter.model":   "EXAMLENS_OPENROUTER_MODEL",
}

func bindShortEnv(v *viper.Viper) error {
	for key, short := range shortEnv {
		nested := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, nested, short); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.mode", "development")
	v.SetDefault("store.path", "")
	v.SetDefault("store.disabled", false)

	l := llm.DefaultConfig()
	v.SetDefault("llm.provider", l.Provider)
	providers := map[string]ProviderConfig{
		"anthropic":  {APIKey: l.Anthropic.APIKey, Model: l.Anthropic.Model},
		"openai":     {APIKey: l.OpenAI.APIKey, Model: l.OpenAI.Model, BaseURL: l.OpenAI.BaseURL},
		"gemini":     {APIKey: l.Gemini.APIKey, Model: l.Gemini.Model, BaseURL: l.Gemini.BaseURL},
		"openrouter": {APIKey: l.OpenRouter.APIKey, Model: l.OpenRouter.Model, BaseURL: l.OpenRouter.BaseURL},
	}
	for name, p := range providers {
		v.SetDefault("llm."+name+".api_key", p.APIKey)
		v.SetDefault("llm."+name+".model", p.Model)
		v.SetDefault("llm."+name+".base_url", p.BaseURL)
	}
	v.SetDefault("llm.timeout", l.Timeout)
	v.SetDefault("llm.stream_timeout", l.StreamTimeout)
	v.SetDefault("llm.max_attempts", l.Retry.MaxAttempts)

	sol := ingest.DefaultSolverConfig()
	v.SetDefault("llm.max_tokens", sol.MaxTokens)
	v.SetDefault("llm.temperature", sol.Temperature)

	s := subject.DefaultConfig()
	v.SetDefault("subject.base_confidence", s.BaseConfidence)
	v.SetDefault("subject.keyword_step", s.KeywordStep)
	v.SetDefault("subject.max_confidence", s.MaxConfidence)
	v.SetDefault("subject.english_sentence_boost", s.EnglishSentenceBoost)
	v.SetDefault("subject.ambiguity_margin", s.AmbiguityMargin)
	v.SetDefault("subject.latin_ratio", s.LatinRatio)
	v.SetDefault("subject.han_density", s.HanDensity)
	v.SetDefault("subject.reading_length", s.ReadingLength)

	k := kind.DefaultConfig()
	v.SetDefault("kind.passage_length_cutoff", k.PassageLengthCutoff)
	v.SetDefault("kind.sentence_ratio", k.SentenceRatio)
	v.SetDefault("kind.min_discourse_options", k.MinDiscourseOptions)
	v.SetDefault("kind.max_discourse_options", k.MaxDiscourseOptions)
	v.SetDefault("kind.fallback_confidence", k.FallbackConfidence)

	st := structure.DefaultConfig()
	v.SetDefault("structure.shape_ratio", st.ShapeRatio)
	v.SetDefault("structure.max_option_length", st.MaxOptionLength)
	v.SetDefault("structure.min_sentence_tokens", st.MinSentenceTokens)
	v.SetDefault("structure.max_phrase_tokens", st.MaxPhraseTokens)

	x := stream.DefaultConfig()
	v.SetDefault("stream.error_preview_length", x.ErrorPreviewLength)
	v.SetDefault("stream.emit_text", x.EmitText)

	v.SetDefault("ingest.workers", ingest.DefaultConfig().Workers)
}

// LLMProvider converts the llm section. When the selected provider has no
// key, the standard vendor variables (GEMINI_API_KEY and friends) are
// probed before giving up. On error the unvalidated config is still
// returned so a caller can switch providers.
func (c *Config) LLMProvider() (llm.Config, error) {
	out := llm.DefaultConfig()
	out.Provider = c.LLM.Provider
	out.Anthropic = llm.AnthropicConfig{APIKey: c.LLM.Anthropic.APIKey, Model: c.LLM.Anthropic.Model}
	out.OpenAI = llm.OpenAIConfig{APIKey: c.LLM.OpenAI.APIKey, Model: c.LLM.OpenAI.Model, BaseURL: c.LLM.OpenAI.BaseURL}
	out.Gemini = llm.GeminiConfig{APIKey: c.LLM.Gemini.APIKey, Model: c.LLM.Gemini.Model, BaseURL: c.LLM.Gemini.BaseURL}
	out.OpenRouter = llm.OpenRouterConfig{APIKey: c.LLM.OpenRouter.APIKey, Model: c.LLM.OpenRouter.Model, BaseURL: c.LLM.OpenRouter.BaseURL}
	if c.LLM.Timeout > 0 {
		out.Timeout = c.LLM.Timeout
	}
	if c.LLM.StreamTimeout > 0 {
		out.StreamTimeout = c.LLM.StreamTimeout
	}
	if c.LLM.MaxAttempts > 0 {
		out.Retry.MaxAttempts = c.LLM.MaxAttempts
	}

	if err := out.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return out, err
		}
		discovered.Timeout = out.Timeout
		discovered.StreamTimeout = out.StreamTimeout
		discovered.Retry = out.Retry
		return discovered, nil
	}
	return out, nil
}

// Analyzer converts the classification sections.
func (c *Config) Analyzer() ingest.Config {
	return ingest.Config{
		Subject: subject.Config{
			BaseConfidence:       c.Subject.BaseConfidence,
			KeywordStep:          c.Subject.KeywordStep,
			MaxConfidence:        c.Subject.MaxConfidence,
			EnglishSentenceBoost: c.Subject.EnglishSentenceBoost,
			AmbiguityMargin:      c.Subject.AmbiguityMargin,
			LatinRatio:           c.Subject.LatinRatio,
			HanDensity:           c.Subject.HanDensity,
			ReadingLength:        c.Subject.ReadingLength,
		},
		Structure: structure.Config{
			ShapeRatio:        c.Structure.ShapeRatio,
			MaxOptionLength:   c.Structure.MaxOptionLength,
			MinSentenceTokens: c.Structure.MinSentenceTokens,
			MaxPhraseTokens:   c.Structure.MaxPhraseTokens,
		},
		Kind: kind.Config{
			PassageLengthCutoff: c.Kind.PassageLengthCutoff,
			SentenceRatio:       c.Kind.SentenceRatio,
			MinDiscourseOptions: c.Kind.MinDiscourseOptions,
			MaxDiscourseOptions: c.Kind.MaxDiscourseOptions,
			FallbackConfidence:  c.Kind.FallbackConfidence,
		},
		Workers: c.Ingest.Workers,
	}
}

// Solver converts the answer-generation settings.
func (c *Config) Solver() ingest.SolverConfig {
	cfg := ingest.DefaultSolverConfig()
	cfg.Extractor = stream.Config{
		ErrorPreviewLength: c.Stream.ErrorPreviewLength,
		EmitText:           c.Stream.EmitText,
	}
	cfg.MaxTokens = c.LLM.MaxTokens
	cfg.Temperature = c.LLM.Temperature
	if c.LLM.StreamTimeout > 0 {
		cfg.Timeout = c.LLM.StreamTimeout
	}
	return cfg
}
