package port

import (
	"context"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/google/uuid"
)

// SessionService is an interface to define session bookkeeping
type SessionService interface {
	CreateSession(ctx context.Context, owner string, in domain.CreateSessionInput) (*domain.CreateSessionResult, error)
	GetSessionStatus(ctx context.Context, owner string, token uuid.UUID) (*domain.SessionProgress, error)
	PauseSession(ctx context.Context, owner string, token uuid.UUID) error
	CancelSession(ctx context.Context, owner string, token uuid.UUID) error
	ListActiveSessions(ctx context.Context, owner string) ([]domain.UploadSession, error)
}

// UploadService is an interface to define chunk intake and the finalize protocol
type UploadService interface {
	UploadChunk(ctx context.Context, owner string, token uuid.UUID, index int, payload []byte, checksum string) (*domain.ChunkProgress, error)
	FinalizeUpload(ctx context.Context, owner string, token uuid.UUID) (*domain.FinalizeResult, error)
	GetFinalizeStatus(ctx context.Context, owner string, token uuid.UUID) (*domain.FinalizeStatus, error)
}

// AssemblyDispatcher hands a token to the background assembler without
// awaiting the result. Implementations are the in-process assembler and an
// event-broker dispatcher for standalone worker deployments.
type AssemblyDispatcher interface {
	Dispatch(token uuid.UUID)
}

// Assembler is the background component that consolidates chunks into one
// durable object.
type Assembler interface {
	AssemblyDispatcher
	Assemble(ctx context.Context, token uuid.UUID) error
	// Recover re-dispatches assembly for jobs that never ran to completion.
	// Called once on process startup.
	Recover(ctx context.Context) error
}

// StreamService resolves how bytes for a session should be served
type StreamService interface {
	Open(ctx context.Context, token uuid.UUID) (*domain.StreamSource, error)
}

// CleanupService is a service that handles expiry of stale sessions
type CleanupService interface {
	CleanupExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
