package llm

import "github.com/sandevgo/conductor/internal/core"

func NewOpenRouter(apiKey string) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		Provider:   "openrouter",
		BaseURL:    "https://openrouter.ai/api",
		APIKey:     apiKey,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
		ExtraHeaders: map[string]string{
			"X-Title": core.AppName,
		},
	})
}
