package speech

import (
	"context"
	"errors"
)

var (
	// ErrTranscription wraps every speech-to-text failure; a turn stops here.
	ErrTranscription = errors.New("transcription failed")
	// ErrSynthesis marks a text-to-speech failure. It is logged, never returned.
	ErrSynthesis = errors.New("speech synthesis failed")
)

type STTClient interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}

type TTSClient interface {
	// Synthesize writes the spoken text to outPath.
	Synthesize(ctx context.Context, text, outPath string) error
}

type Player interface {
	Play(ctx context.Context, path string) error
}

type Uploader interface {
	UploadAudio(ctx context.Context, path string) (string, error)
}

type SynthesisStatus string

const (
	SynthesisCompleted SynthesisStatus = "completed"
	SynthesisCanceled  SynthesisStatus = "canceled"
)

type CancelReason string

const (
	CancelReasonError    CancelReason = "error"
	CancelReasonCanceled CancelReason = "canceled"
)

type SynthesisResult struct {
	Status    SynthesisStatus `json:"status"`
	Reason    CancelReason    `json:"reason,omitempty"`
	Detail    string          `json:"detail,omitempty"`
	AudioPath string          `json:"-"`
	AudioURL  string          `json:"audio_url,omitempty"`
}
