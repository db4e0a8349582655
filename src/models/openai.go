package models

import (
	"context"
	"errors"
	"os"

	"github.com/sashabaranov/go-openai"
)

// OpenAILLM talks to any OpenAI-compatible chat completion endpoint.
// With BaseURL set to OpenRouter it is the primary completion provider
// for RAG answers, routing, and comparisons.
type OpenAILLM struct {
	Client      *openai.Client
	Model       string
	Temperature float32
}

func NewOpenAILLM(model string) *OpenAILLM {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_KEY")
	}
	return newOpenAICompatible(apiKey, "", model)
}

// NewOpenRouterLLM points the OpenAI client at OpenRouter.
func NewOpenRouterLLM(model string) *OpenAILLM {
	return newOpenAICompatible(os.Getenv("OPENROUTER_API_KEY"), "https://openrouter.ai/api/v1", model)
}

func newOpenAICompatible(apiKey, baseURL, model string) *OpenAILLM {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAILLM{
		Client:      openai.NewClientWithConfig(cfg),
		Model:       model,
		Temperature: 0.4,
	}
}

func (o *OpenAILLM) Generate(ctx context.Context, prompt string) (any, error) {
	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.Model,
		Temperature: o.Temperature,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from completion provider")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Agent = (*OpenAILLM)(nil)
