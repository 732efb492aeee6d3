package upload

import (
	"context"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/google/uuid"
)

// GetSessionStatus returns aggregated progress plus the per-chunk status
// list clients use to resume by uploading only missing indices. Counters are
// recomputed from chunk state, never read from a separately maintained
// counter.
func (s *Service) GetSessionStatus(ctx context.Context, owner string, token uuid.UUID) (*domain.SessionProgress, error) {
	session, err := s.loadOwnedSession(ctx, owner, token)
	if err != nil {
		return nil, err
	}

	chunks, err := s.uow.ChunkRepo().FindBySession(ctx, token)
	if err != nil {
		return nil, err
	}

	states := make([]domain.ChunkState, 0, len(chunks))
	uploaded := 0
	var uploadedBytes int64
	for _, chunk := range chunks {
		states = append(states, domain.ChunkState{Index: chunk.Index, Status: chunk.Status})
		if chunk.Status.IsUploaded() {
			uploaded++
			uploadedBytes += chunk.Size
		}
	}

	return &domain.SessionProgress{
		Token:          session.Token,
		Status:         session.Status,
		TotalChunks:    session.TotalChunks,
		UploadedChunks: uploaded,
		UploadedBytes:  uploadedBytes,
		TotalSize:      session.TotalSize,
		Chunks:         states,
		Metadata:       session.Metadata,
		ExpiresAt:      session.ExpiresAt,
	}, nil
}
