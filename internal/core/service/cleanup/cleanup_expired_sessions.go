package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
)

// CleanupService reaps sessions whose expiry has passed. It implements
// port.CleanupService and runs on a ticker in the api process.
type CleanupService struct {
	uow     port.UnitOfWork
	storage port.ObjectStorage
	logger  *slog.Logger
}

// NewCleanupService creates a new CleanupService
func NewCleanupService(uow port.UnitOfWork, storage port.ObjectStorage, logger *slog.Logger) *CleanupService {
	return &CleanupService{
		uow:     uow,
		storage: storage,
		logger:  logger,
	}
}

// CleanupExpiredSessions marks every overdue active or paused session expired
// and removes its chunk objects from storage. Storage cleanup is best effort;
// an object removal failure never blocks expiring the remaining sessions.
func (s *CleanupService) CleanupExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tokens, err := s.uow.SessionRepo().ExpireStale(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	for _, token := range tokens {
		if err := s.storage.RemoveByPrefix(ctx, domain.ChunkKeyPrefix(token)); err != nil {
			s.logger.Warn("failed to remove chunk objects for expired session",
				"token", token, "error", err)
		}
	}

	s.logger.Info("expired stale sessions", "count", len(tokens))
	return int64(len(tokens)), nil
}
