package port

import (
	"context"
	"io"
	"time"
)

// ObjectStorage is an interface to define object storage interactions
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, key string) error
	RemoveByPrefix(ctx context.Context, prefix string) error
	GeneratePresignedURLForDownload(ctx context.Context, key string) (string, *time.Time, error)
}
