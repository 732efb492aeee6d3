package upload

import (
	"context"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/google/uuid"
)

// PauseSession suspends chunk intake for a session. Only active sessions can
// be paused; resuming happens implicitly on the next successful chunk upload.
func (s *Service) PauseSession(ctx context.Context, owner string, token uuid.UUID) error {
	if _, err := s.loadOwnedSession(ctx, owner, token); err != nil {
		return err
	}

	err := s.uow.SessionRepo().UpdateStatus(ctx, token,
		[]domain.SessionStatus{domain.SessionStatusActive},
		domain.SessionStatusPaused)
	if err != nil {
		return err
	}

	return s.slideExpiry(ctx, token)
}
