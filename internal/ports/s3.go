package ports

import (
	"context"
	"io"
)

// S3Client is the low-level object store client.
type S3Client interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (publicURL string, err error)
}
