package models

import (
	"context"
	"fmt"
	"strings"
)

// NewLLMProvider builds an Agent by provider name:
// openrouter|openai|anthropic|gemini|ollama|dummy.
func NewLLMProvider(ctx context.Context, provider, model string) (Agent, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openrouter", "":
		return NewOpenRouterLLM(model), nil
	case "openai":
		return NewOpenAILLM(model), nil
	case "anthropic", "claude":
		return NewAnthropicLLM(model), nil
	case "gemini", "google":
		return NewGeminiLLM(ctx, model)
	case "ollama":
		return NewOllamaLLM(model)
	case "dummy":
		return NewDummyLLM(""), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
