package port

import (
	"context"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/google/uuid"
)

// ChunkRepository is an interface to interact with per-chunk records
type ChunkRepository interface {
	CreateBatch(ctx context.Context, chunks []domain.ChunkRecord) error
	FindBySession(ctx context.Context, token uuid.UUID) ([]domain.ChunkRecord, error)
	FindOne(ctx context.Context, token uuid.UUID, index int) (*domain.ChunkRecord, error)
	MarkUploaded(ctx context.Context, token uuid.UUID, index int, size int64, checksum string, uploadedAt time.Time) error
	// CountUploaded returns the number of uploaded/verified chunks and their
	// total byte size, recomputed from chunk state.
	CountUploaded(ctx context.Context, token uuid.UUID) (int, int64, error)
	CountPending(ctx context.Context, token uuid.UUID) (int, error)
	DeleteBySession(ctx context.Context, token uuid.UUID) error
}
