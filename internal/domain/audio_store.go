package domain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Vovarama1992/lang_tutor/internal/ports"
)

// AudioStore publishes synthesized replies to S3.
type AudioStore struct {
	client ports.S3Client
	now    func() time.Time
	log    *zap.Logger
}

func NewAudioStore(client ports.S3Client, log *zap.Logger) *AudioStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &AudioStore{client: client, now: time.Now, log: log.Named("audio_store")}
}

// ObjectKey is the bucket path for a reply file.
func (s *AudioStore) ObjectKey(filename string) string {
	date := s.now().Format("2006-01-02")
	return fmt.Sprintf("replies/%s/%s", date, filepath.Base(filename))
}

func (s *AudioStore) UploadAudio(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	key := s.ObjectKey(path)
	url, err := s.client.PutObject(ctx, key, f, info.Size(), "audio/mpeg")
	if err != nil {
		return "", err
	}

	s.log.Info("reply audio uploaded",
		zap.String("key", key),
		zap.String("size", humanize.Bytes(uint64(info.Size()))),
	)
	return url, nil
}
