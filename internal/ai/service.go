package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Vovarama1992/lang_tutor/internal/conversation"
)

// ErrRemoteService wraps every failure of the text-generation API.
var ErrRemoteService = errors.New("text generation failed")

const (
	defaultTemperature      = 0.5
	defaultFrequencyPenalty = 1.0
	defaultPresencePenalty  = 0.0
)

type Service struct {
	client  Completer
	params  CompletionParams
	timeout time.Duration
	tokens  TokenCounter
	log     *zap.Logger
}

// NewService builds the dialog engine. tokens may be nil.
func NewService(client Completer, model string, timeout time.Duration, tokens TokenCounter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		client: client,
		params: CompletionParams{
			Model:            model,
			Temperature:      defaultTemperature,
			FrequencyPenalty: defaultFrequencyPenalty,
			PresencePenalty:  defaultPresencePenalty,
		},
		timeout: timeout,
		tokens:  tokens,
		log:     log.Named("ai"),
	}
}

func (s *Service) Params() CompletionParams {
	return s.params
}

// Respond appends the utterance as a user message and asks the model for a
// reply over the whole conversation. When the call fails the conversation is
// restored to what it was before Respond was called.
func (s *Service) Respond(ctx context.Context, conv *conversation.Conversation, utterance string) (string, error) {
	mark := conv.Mark()
	if err := conv.AppendUser(utterance); err != nil {
		return "", err
	}

	messages := toChatMessages(conv.Messages())

	fields := []zap.Field{
		zap.String("model", s.params.Model),
		zap.Int("messages", len(messages)),
	}
	if s.tokens != nil {
		fields = append(fields, zap.Int("prompt_tokens", s.tokens.Count(messages)))
	}
	s.log.Debug("chat request", fields...)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.client.GetCompletion(ctx, messages, s.params)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		conv.Restore(mark)
		s.log.Error("chat completion failed",
			zap.Error(err),
			zap.String("diagnosis", Diagnose(err)),
			zap.Duration("took", time.Since(start)),
		)
		return "", fmt.Errorf("%w: %w", ErrRemoteService, err)
	}

	s.log.Info("chat completion done", zap.Duration("took", time.Since(start)), zap.Int("reply_len", len(reply)))
	return reply, nil
}

func toChatMessages(msgs []conversation.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}
