package embedding

import "fmt"

func NewProvider(providerType, apiKey, baseURL, model string, dimension int) (Provider, error) {
	switch providerType {
	case "gemini":
		return NewGeminiProvider(apiKey, model, dimension), nil
	case "ollama":
		return NewOllamaProvider(baseURL, model, dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
