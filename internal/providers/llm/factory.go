package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/conductor/internal/config"
	"github.com/sandevgo/conductor/internal/core"
	"github.com/sandevgo/conductor/pkg/log"
)

// NewBackend creates the backend matching the configured provider label.
func NewBackend(ctx context.Context, provider string, cfg *config.ProviderConfig) (core.Backend, error) {
	log.FromCtx(ctx).Info().
		Str("provider", provider).
		Msg("starting llm backend")

	switch provider {
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey), nil
	case "openrouter":
		return NewOpenRouter(cfg.OpenRouterAPIKey), nil
	case "ollama":
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey), nil
	case "custom":
		return NewOpenAICompatible(OpenAICompatibleConfig{
			Provider:   "custom",
			BaseURL:    cfg.CustomBaseURL,
			APIKey:     cfg.CustomAPIKey,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
