package speech

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperClient transcribes recordings with OpenAI's whisper-1.
type WhisperClient struct {
	client *openai.Client
}

func NewWhisperClient(client *openai.Client) *WhisperClient {
	return &WhisperClient{client: client}
}

func (c *WhisperClient) Transcribe(ctx context.Context, filePath string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filePath,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}
