package provider

import "fmt"

// New constructs a named completion provider. The mock provider lives in
// its own package and is wired by the callers that need it.
func New(name, apiKey, baseURL string) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAIProvider(OpenAIConfig{APIKey: apiKey, BaseURL: baseURL}), nil
	case "anthropic":
		return NewAnthropicProvider(AnthropicConfig{APIKey: apiKey, BaseURL: baseURL}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
