package port

import (
	"context"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/google/uuid"
)

// AssemblyJobRepository is an interface to interact with the durable job
// records that track background assembly runs.
type AssemblyJobRepository interface {
	// Enqueue creates the job or resets an existing one back to queued.
	Enqueue(ctx context.Context, token uuid.UUID) error
	// Claim moves a queued job to running and bumps its attempt counter.
	// It returns false when the job is not claimable, which makes a second
	// dispatch for the same token a no-op.
	Claim(ctx context.Context, token uuid.UUID, now time.Time) (bool, error)
	MarkDone(ctx context.Context, token uuid.UUID) error
	MarkSkipped(ctx context.Context, token uuid.UUID) error
	MarkFailed(ctx context.Context, token uuid.UUID, cause string) error
	// FindRecoverable returns jobs that never ran to completion: failed
	// jobs, queued jobs, and running jobs older than the stale cutoff
	// (the process died mid-assembly).
	FindRecoverable(ctx context.Context, staleBefore time.Time) ([]domain.AssemblyJob, error)
}
