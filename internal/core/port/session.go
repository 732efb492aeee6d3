package port

import (
	"context"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/google/uuid"
)

// UploadSessionRepository is an interface to interact with upload session records
type UploadSessionRepository interface {
	Create(ctx context.Context, session domain.UploadSession) error
	// FindByToken looks a session up regardless of owner. Used by the
	// streaming gateway and the assembler, which hold only the token.
	FindByToken(ctx context.Context, token uuid.UUID) (*domain.UploadSession, error)
	FindByTokenAndOwner(ctx context.Context, token uuid.UUID, owner string) (*domain.UploadSession, error)
	// UpdateStatus is a compare-and-swap: the row moves to the new status
	// only if its current status is one of the expected ones, otherwise
	// domain.ErrStateConflict is returned.
	UpdateStatus(ctx context.Context, token uuid.UUID, from []domain.SessionStatus, to domain.SessionStatus) error
	Touch(ctx context.Context, token uuid.UUID, lastActivity, expiresAt time.Time) error
	// RefreshCounters recomputes uploaded_chunks and uploaded_bytes from the
	// chunk rows, so progress never drifts under concurrent chunk uploads.
	RefreshCounters(ctx context.Context, token uuid.UUID) error
	SetFinalLocation(ctx context.Context, token uuid.UUID, finalKey, finalURL string, completedAt time.Time) error
	// PromoteFinalLocation swaps the streaming locator for the durable
	// location. It only matches rows whose final key still carries the
	// stream prefix, which makes the transition one-time and monotonic.
	PromoteFinalLocation(ctx context.Context, token uuid.UUID, finalKey, finalURL string) error
	ListActive(ctx context.Context, owner string) ([]domain.UploadSession, error)
	// ExpireStale marks every active or paused session past its expiry as
	// expired and returns the tokens it touched.
	ExpireStale(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	Delete(ctx context.Context, token uuid.UUID) error
}
