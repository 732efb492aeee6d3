package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the status of an upload session
type SessionStatus string

const (
	SessionStatusActive     SessionStatus = "active"
	SessionStatusPaused     SessionStatus = "paused"
	SessionStatusFinalizing SessionStatus = "finalizing"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
	SessionStatusExpired    SessionStatus = "expired"
)

// IsTerminal reports whether no further transitions are allowed from the status
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// UploadSession represents one chunked upload attempt. The token is the
// external handle for every operation on the session.
type UploadSession struct {
	Token          uuid.UUID
	Owner          string
	Filename       string
	MimeType       string
	Category       MediaCategory
	TotalSize      int64
	ChunkSize      int64
	TotalChunks    int
	Status         SessionStatus
	UploadedChunks int
	UploadedBytes  int64
	Metadata       map[string]string
	FinalKey       *string
	FinalURL       *string
	CreatedAt      time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
	CompletedAt    *time.Time
}

// StreamKeyPrefix marks final keys that still point at the chunk-replay
// streaming path rather than a consolidated object.
const StreamKeyPrefix = "stream/"

// StreamKey is the streaming locator key for a session, derived from the
// token alone so it exists before any chunk is consolidated.
func StreamKey(token uuid.UUID) string {
	return StreamKeyPrefix + token.String()
}

// HasDurableLocation reports whether assembly has already swapped the final
// location from the streaming locator to a consolidated object.
func (s *UploadSession) HasDurableLocation() bool {
	return s.FinalKey != nil && *s.FinalKey != "" &&
		!strings.HasPrefix(*s.FinalKey, StreamKeyPrefix)
}

// SessionProgress is the aggregated view returned by getSessionStatus,
// with counters recomputed from chunk state.
type SessionProgress struct {
	Token          uuid.UUID
	Status         SessionStatus
	TotalChunks    int
	UploadedChunks int
	UploadedBytes  int64
	TotalSize      int64
	Chunks         []ChunkState
	Metadata       map[string]string
	ExpiresAt      time.Time
}

// ChunkState is the per-chunk view clients use to resume an interrupted upload
type ChunkState struct {
	Index  int         `json:"index"`
	Status ChunkStatus `json:"status"`
}

// CreateSessionInput carries the caller-supplied fields for a new session
type CreateSessionInput struct {
	Filename  string
	MimeType  string
	TotalSize int64
	ChunkSize int64
	Metadata  map[string]string
}

// CreateSessionResult is what the client needs to start uploading chunks
type CreateSessionResult struct {
	Token       uuid.UUID
	ChunkSize   int64
	TotalChunks int
	ExpiresAt   time.Time
}
