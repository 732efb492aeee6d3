package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Adapter is an adapter for minio
type Adapter struct {
	client *minio.Client
	config config.MinioConfig
	logger *slog.Logger
}

// NewAdapter returns Adapter
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Adapter{client: client, config: cfg, logger: logger}, nil
}

// PutObject stores an object under the given key, overwriting any previous content
func (a *Adapter) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.OperationTimeout)
	defer cancel()

	_, err := a.client.PutObject(ctx, a.config.BucketName, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// GetObject retrieves an object. The returned reader streams from storage and
// must be closed by the caller.
func (a *Adapter) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	object, err := a.client.GetObject(ctx, a.config.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return object, nil
}

// RemoveObject deletes an object from storage
func (a *Adapter) RemoveObject(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.OperationTimeout)
	defer cancel()

	err := a.client.RemoveObject(ctx, a.config.BucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// RemoveByPrefix deletes every object under a prefix (e.g. all chunks of one session)
func (a *Adapter) RemoveByPrefix(ctx context.Context, prefix string) error {
	objects := a.client.ListObjects(ctx, a.config.BucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var errs []error
	removed := 0
	for object := range objects {
		if object.Err != nil {
			errs = append(errs, object.Err)
			continue
		}
		if err := a.client.RemoveObject(ctx, a.config.BucketName, object.Key, minio.RemoveObjectOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete object %s: %w", object.Key, err))
			continue
		}
		removed++
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to remove prefix %s: %w", prefix, errors.Join(errs...))
	}

	a.logger.Info("objects removed",
		slog.String("prefix", prefix),
		slog.Int("count", removed))

	return nil
}

// GeneratePresignedURLForDownload generates a presigned URL for downloading an object
func (a *Adapter) GeneratePresignedURLForDownload(ctx context.Context, key string) (string, *time.Time, error) {
	presignedURL, err := a.client.PresignedGetObject(ctx, a.config.BucketName, key, a.config.DownloadSignedURLDuration, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	expiresAt := time.Now().Add(a.config.DownloadSignedURLDuration)

	return presignedURL.String(), &expiresAt, nil
}
