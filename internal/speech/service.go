package speech

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Options struct {
	AudioDir   string
	STTTimeout time.Duration
	TTSTimeout time.Duration
	Player     Player   // optional
	Uploader   Uploader // optional
}

// Service is the speech bridge: recorded audio in, spoken replies out.
type Service struct {
	stt  STTClient
	tts  TTSClient
	opts Options
	log  *zap.Logger
}

func NewService(stt STTClient, tts TTSClient, opts Options, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		stt:  stt,
		tts:  tts,
		opts: opts,
		log:  log.Named("speech"),
	}
}

func (s *Service) Transcribe(ctx context.Context, filePath string) (string, error) {
	if s.opts.STTTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.STTTimeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.stt.Transcribe(ctx, filePath)
	if err != nil {
		s.log.Error("transcription failed", zap.String("path", filePath), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.log.Warn("empty transcript", zap.String("path", filePath))
		return "", fmt.Errorf("%w: empty transcript", ErrTranscription)
	}

	s.log.Info("transcribed", zap.Duration("took", time.Since(start)), zap.Int("len", len(text)))
	return text, nil
}

// Synthesize speaks text and reports how it went. Failures come back as a
// canceled result, never as an error.
func (s *Service) Synthesize(ctx context.Context, turnID, text string) SynthesisResult {
	outPath := filepath.Join(s.opts.AudioDir, "reply_"+turnID+".mp3")

	ttsCtx := ctx
	if s.opts.TTSTimeout > 0 {
		var cancel context.CancelFunc
		ttsCtx, cancel = context.WithTimeout(ctx, s.opts.TTSTimeout)
		defer cancel()
	}

	if err := s.tts.Synthesize(ttsCtx, text, outPath); err != nil {
		res := canceledResult(err)
		s.log.Warn("speech synthesis canceled",
			zap.String("reason", string(res.Reason)),
			zap.String("detail", res.Detail),
			zap.Error(fmt.Errorf("%w: %w", ErrSynthesis, err)),
		)
		return res
	}

	res := SynthesisResult{Status: SynthesisCompleted, AudioPath: outPath}
	s.log.Info("speech synthesized", zap.String("path", outPath), zap.Int("text_len", len(text)))

	if s.opts.Player != nil {
		if err := s.opts.Player.Play(ctx, outPath); err != nil {
			s.log.Warn("playback failed", zap.String("path", outPath), zap.Error(err))
		}
	}

	if s.opts.Uploader != nil {
		url, err := s.opts.Uploader.UploadAudio(ctx, outPath)
		if err != nil {
			s.log.Warn("audio upload failed", zap.String("path", outPath), zap.Error(err))
		} else {
			res.AudioURL = url
		}
	}

	return res
}

func canceledResult(err error) SynthesisResult {
	reason := CancelReasonError
	if errors.Is(err, context.Canceled) {
		reason = CancelReasonCanceled
	}
	return SynthesisResult{
		Status: SynthesisCanceled,
		Reason: reason,
		Detail: err.Error(),
	}
}
