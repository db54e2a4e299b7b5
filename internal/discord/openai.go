package discord

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const scoutSystemPrompt = "You are a concise fantasy basketball analyst. Answer in plain text, no lists."

func NewOpenAIClient(apiKey string, maxTokens int, temperature float64) *OpenAIClient {
	return NewOpenAIClientWithConfig(openai.DefaultConfig(apiKey), maxTokens, temperature)
}

// NewOpenAIClientWithConfig allows a custom base URL or HTTP client.
func NewOpenAIClientWithConfig(cfg openai.ClientConfig, maxTokens int, temperature float64) *OpenAIClient {
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       openai.GPT4oMini,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
	}
}

func (o *OpenAIClient) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: scoutSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   o.maxTokens,
			Temperature: o.temperature,
		},
	)

	if err != nil {
		return "", fmt.Errorf("ChatCompletion error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}
