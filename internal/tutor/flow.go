// Package tutor runs a learner's turn end to end: speech in, model reply,
// speech out, transcript back.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/Vovarama1992/lang_tutor/internal/ai"
	"github.com/Vovarama1992/lang_tutor/internal/conversation"
	"github.com/Vovarama1992/lang_tutor/internal/speech"
)

type TurnResult struct {
	TurnID     string                 `json:"turn_id"`
	Question   string                 `json:"question"`
	Reply      string                 `json:"reply"`
	Transcript string                 `json:"transcript"`
	Synthesis  speech.SynthesisResult `json:"synthesis"`
}

type Flow struct {
	stt    Transcriber
	dialog Responder
	tts    Synthesizer
	notify Notifier
	log    *zap.Logger
	newID  func() string
}

func NewFlow(stt Transcriber, dialog Responder, tts Synthesizer, notify Notifier, log *zap.Logger) *Flow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{
		stt:    stt,
		dialog: dialog,
		tts:    tts,
		notify: notify,
		log:    log.Named("tutor"),
		newID:  func() string { return xid.New().String() },
	}
}

// AudioTurn transcribes a recorded question and answers it. When the
// transcription fails the conversation is left untouched.
func (f *Flow) AudioTurn(ctx context.Context, sess *conversation.Session, audioPath string) (*TurnResult, error) {
	sess.Lock()
	defer sess.Unlock()

	turnID := f.newID()
	log := f.log.With(zap.String("session", sess.ID), zap.String("turn", turnID), zap.String("source", "audio"))
	log.Info("turn start", zap.String("path", audioPath))

	text, err := f.stt.Transcribe(ctx, audioPath)
	if err != nil {
		f.report(ctx, log, err, fmt.Sprintf("audio turn %s: transcription", turnID))
		return nil, err
	}
	log.Info("question transcribed", zap.String("text", text))

	return f.answer(ctx, log, sess, turnID, text)
}

// TextTurn answers a typed question.
func (f *Flow) TextTurn(ctx context.Context, sess *conversation.Session, text string) (*TurnResult, error) {
	sess.Lock()
	defer sess.Unlock()

	turnID := f.newID()
	log := f.log.With(zap.String("session", sess.ID), zap.String("turn", turnID), zap.String("source", "text"))
	log.Info("turn start")

	return f.answer(ctx, log, sess, turnID, text)
}

// Transcript is safe to call while a turn runs; it never shows a question
// whose reply has not been committed.
func (f *Flow) Transcript(sess *conversation.Session) string {
	return sess.Conversation.CommittedTranscript()
}

func (f *Flow) answer(ctx context.Context, log *zap.Logger, sess *conversation.Session, turnID, question string) (*TurnResult, error) {
	start := time.Now()
	conv := sess.Conversation
	mark := conv.Mark()

	reply, err := f.dialog.Respond(ctx, conv, question)
	if err != nil {
		if errors.Is(err, ai.ErrRemoteService) && !errors.Is(err, context.Canceled) {
			f.report(ctx, log, err, fmt.Sprintf("turn %s: %s", turnID, ai.Diagnose(err)))
		}
		return nil, err
	}

	syn := f.tts.Synthesize(ctx, turnID, reply)
	if syn.Status == speech.SynthesisCanceled {
		log.Warn("speech synthesis canceled", zap.String("reason", string(syn.Reason)), zap.String("detail", syn.Detail))
	}

	if err := conv.AppendAssistant(reply); err != nil {
		conv.Restore(mark)
		return nil, err
	}

	log.Info("turn done",
		zap.Duration("took", time.Since(start)),
		zap.String("synthesis", string(syn.Status)),
	)

	return &TurnResult{
		TurnID:     turnID,
		Question:   question,
		Reply:      reply,
		Transcript: conv.Transcript(),
		Synthesis:  syn,
	}, nil
}

func (f *Flow) report(ctx context.Context, log *zap.Logger, err error, details string) {
	log.Error("turn failed", zap.Error(err))
	if f.notify == nil {
		return
	}
	_ = f.notify.Notify(ctx, err, details)
}
