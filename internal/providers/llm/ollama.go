package llm

// NewOllama targets a local Ollama server, which exposes the same chat
// completions surface. The API key is optional for proxied setups.
func NewOllama(baseURL, apiKey string) *OpenAICompatible {
	cfg := OpenAICompatibleConfig{
		Provider: "ollama",
		BaseURL:  baseURL,
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
		cfg.AuthHeader = "Authorization"
		cfg.AuthPrefix = "Bearer "
	}
	return NewOpenAICompatible(cfg)
}
