package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

var ErrNoChoices = errors.New("completion returned no choices")

// CompletionParams are the sampling settings sent with every chat request.
type CompletionParams struct {
	Model            string
	Temperature      float32
	FrequencyPenalty float32
	PresencePenalty  float32
}

type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
	}
}

// Raw exposes the underlying SDK client so Whisper can share credentials.
func (c *OpenAIClient) Raw() *openai.Client {
	return c.client
}

func (c *OpenAIClient) GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, p CompletionParams) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:            p.Model,
		Messages:         messages,
		Temperature:      p.Temperature,
		FrequencyPenalty: p.FrequencyPenalty,
		PresencePenalty:  p.PresencePenalty,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
