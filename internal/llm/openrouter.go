package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// openRouterTitle is sent as X-Title so calls are attributed to the app
	// on the OpenRouter dashboard.
	openRouterTitle = "examlens"
)

// OpenRouterProvider wraps OpenAIProvider with OpenRouter-specific defaults.
// Model IDs are vendor-qualified ("google/gemini-2.0-flash-exp") and pass
// through unchanged.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	inner, err := newOpenAIProvider(OpenAIConfig{
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
	}, func(c *openai.ClientConfig) {
		c.HTTPClient = &headerDoer{
			inner:   c.HTTPClient,
			headers: map[string]string{"X-Title": openRouterTitle},
		}
	})
	if err != nil {
		return nil, err
	}
	inner.model = cfg.Model

	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// headerDoer adds fixed headers to every request.
type headerDoer struct {
	inner   openai.HTTPDoer
	headers map[string]string
}

func (d *headerDoer) Do(req *http.Request) (*http.Response, error) {
	for k, v := range d.headers {
		req.Header.Set(k, v)
	}
	return d.inner.Do(req)
}
