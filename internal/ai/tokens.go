package ai

import (
	tiktoken "github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"
)

// TiktokenCounter estimates prompt size the way the chat API bills it.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) Count(messages []openai.ChatCompletionMessage) int {
	total := 3 // reply priming
	for _, m := range messages {
		total += 4
		total += len(c.enc.Encode(m.Role, nil, nil))
		total += len(c.enc.Encode(m.Content, nil, nil))
	}
	return total
}
