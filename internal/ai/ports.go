package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Completer is the text-generation collaborator.
type Completer interface {
	GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, p CompletionParams) (string, error)
}

type TokenCounter interface {
	Count(messages []openai.ChatCompletionMessage) int
}
