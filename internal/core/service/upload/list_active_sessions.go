package upload

import (
	"context"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
)

// ListActiveSessions returns the owner's resumable sessions (active and
// paused), most recently touched first.
func (s *Service) ListActiveSessions(ctx context.Context, owner string) ([]domain.UploadSession, error) {
	return s.uow.SessionRepo().ListActive(ctx, owner)
}
