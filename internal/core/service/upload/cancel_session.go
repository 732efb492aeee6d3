package upload

import (
	"context"
	"fmt"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
)

// CancelSession aborts a non-completed session and removes all its
// bookkeeping in a single transaction. Chunk objects already in storage are
// cleaned up best effort; a running assembly observes the missing session and
// aborts on its cancellation fence.
func (s *Service) CancelSession(ctx context.Context, owner string, token uuid.UUID) error {
	session, err := s.uow.SessionRepo().FindByTokenAndOwner(ctx, token, owner)
	if err != nil {
		return err
	}
	if session.Status == domain.SessionStatusCompleted {
		return fmt.Errorf("%w: completed sessions cannot be cancelled", domain.ErrStateConflict)
	}

	err = s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.RecordRepo().DeleteBySessionToken(ctx, token); err != nil {
			return err
		}
		if err := uow.ChunkRepo().DeleteBySession(ctx, token); err != nil {
			return err
		}
		return uow.SessionRepo().Delete(ctx, token)
	})
	if err != nil {
		return err
	}

	if err := s.storage.RemoveByPrefix(ctx, domain.ChunkKeyPrefix(token)); err != nil {
		s.logger.Warn("failed to remove chunk objects for cancelled session", "token", token, "error", err)
	}

	return nil
}
