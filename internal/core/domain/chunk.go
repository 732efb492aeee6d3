package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChunkStorageKey is the deterministic storage key for one chunk of a session
func ChunkStorageKey(token uuid.UUID, index int) string {
	return fmt.Sprintf("chunks/%s/chunk-%05d", token, index)
}

// ChunkKeyPrefix is the storage prefix holding all chunks of a session
func ChunkKeyPrefix(token uuid.UUID) string {
	return fmt.Sprintf("chunks/%s/", token)
}

// ChunkStatus represents the status of a single chunk
type ChunkStatus string

const (
	ChunkStatusPending  ChunkStatus = "pending"
	ChunkStatusUploaded ChunkStatus = "uploaded"
	ChunkStatusVerified ChunkStatus = "verified"
)

// IsUploaded reports whether the chunk's bytes have been accepted
func (s ChunkStatus) IsUploaded() bool {
	return s == ChunkStatusUploaded || s == ChunkStatusVerified
}

// ChunkRecord represents one contiguous byte range of the source file,
// stored independently under a deterministic key.
type ChunkRecord struct {
	SessionToken uuid.UUID
	Index        int
	Size         int64
	StorageKey   string
	Status       ChunkStatus
	Checksum     string
	UploadedAt   *time.Time
}

// ChunkProgress is returned after each accepted chunk
type ChunkProgress struct {
	UploadedChunks   int
	TotalChunks      int
	UploadedBytes    int64
	ChecksumVerified bool
}
