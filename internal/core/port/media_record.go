package port

import (
	"context"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/google/uuid"
)

// MediaRecordRepository is an interface to interact with the owning domain
// records for finished uploads.
type MediaRecordRepository interface {
	Create(ctx context.Context, record domain.MediaRecord) error
	FindBySessionToken(ctx context.Context, token uuid.UUID) (*domain.MediaRecord, error)
	// PromoteLocation replaces the streaming locator with the durable
	// location, only if the record still points at the streaming locator.
	PromoteLocation(ctx context.Context, sessionToken uuid.UUID, storageKey, url string, sizeBytes int64) error
	SetThumbnail(ctx context.Context, sessionToken uuid.UUID, thumbnailURL string) error
	DeleteBySessionToken(ctx context.Context, token uuid.UUID) error
}
