package upload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/google/uuid"
)

// UploadChunk accepts one chunk, verifies its integrity and persists it.
// Re-uploading the same index overwrites storage content under the same key,
// which is what makes client retry-after-timeout safe without server-side
// deduplication.
func (s *Service) UploadChunk(ctx context.Context, owner string, token uuid.UUID, index int, payload []byte, checksum string) (*domain.ChunkProgress, error) {
	session, err := s.loadOwnedSession(ctx, owner, token)
	if err != nil {
		return nil, err
	}

	if session.Status != domain.SessionStatusActive && session.Status != domain.SessionStatusPaused {
		return nil, fmt.Errorf("%w: cannot upload chunks while %s", domain.ErrStateConflict, session.Status)
	}

	if index < 0 || index >= session.TotalChunks {
		return nil, fmt.Errorf("%w: index %d out of range [0, %d)", domain.ErrChunkNotFound, index, session.TotalChunks)
	}

	chunk, err := s.uow.ChunkRepo().FindOne(ctx, token, index)
	if err != nil {
		return nil, err
	}

	checksumVerified := false
	if checksum != "" {
		sum := sha256.Sum256(payload)
		if !strings.EqualFold(hex.EncodeToString(sum[:]), checksum) {
			// the chunk stays pending; no partial write is accepted
			return nil, domain.ErrMismatchChecksum
		}
		checksumVerified = true
	}

	err = withRetry(ctx, s.uploadCfg.StorageRetries, s.uploadCfg.RetryBackoffBase, func() error {
		return s.storage.PutObject(ctx, chunk.StorageKey, bytes.NewReader(payload), int64(len(payload)), session.MimeType)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	now := time.Now()
	if err := s.uow.ChunkRepo().MarkUploaded(ctx, token, index, int64(len(payload)), checksum, now); err != nil {
		return nil, err
	}

	// an upload to a paused session resumes it
	if session.Status == domain.SessionStatusPaused {
		err := s.uow.SessionRepo().UpdateStatus(ctx, token,
			[]domain.SessionStatus{domain.SessionStatusPaused},
			domain.SessionStatusActive)
		if err != nil && !errors.Is(err, domain.ErrStateConflict) {
			return nil, err
		}
	}

	if err := s.uow.SessionRepo().RefreshCounters(ctx, token); err != nil {
		return nil, err
	}
	if err := s.slideExpiry(ctx, token); err != nil {
		return nil, err
	}

	uploaded, uploadedBytes, err := s.uow.ChunkRepo().CountUploaded(ctx, token)
	if err != nil {
		return nil, err
	}

	return &domain.ChunkProgress{
		UploadedChunks:   uploaded,
		TotalChunks:      session.TotalChunks,
		UploadedBytes:    uploadedBytes,
		ChecksumVerified: checksumVerified,
	}, nil
}
