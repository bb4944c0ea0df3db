package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/examlens/internal/store"
)

// NewProvider creates a StreamingProvider from configuration.
// It returns the provider wrapped with retry and logging middleware.
// A nil eventRepo disables request recording.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (StreamingProvider, error) {
	var base StreamingProvider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → retry → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo)
	return WithRetry(logged, cfg.Retry), nil
}
