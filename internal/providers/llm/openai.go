package llm

// NewOpenAI points the compatible client at the official OpenAI endpoint.
func NewOpenAI(apiKey string) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		Provider:   "openai",
		BaseURL:    "https://api.openai.com",
		APIKey:     apiKey,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
	})
}
