package tutor

import (
	"context"

	"github.com/Vovarama1992/lang_tutor/internal/conversation"
	"github.com/Vovarama1992/lang_tutor/internal/speech"
)

type Transcriber interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}

type Responder interface {
	Respond(ctx context.Context, conv *conversation.Conversation, utterance string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, turnID, text string) speech.SynthesisResult
}

type Notifier interface {
	Notify(ctx context.Context, err error, details string) error
}
