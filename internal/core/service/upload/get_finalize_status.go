package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/google/uuid"
)

// GetFinalizeStatus reports the state of a finalize attempt for polling
// clients. A session stuck in finalizing past the stale window (a crashed
// inline finalize) is force-reset to active and reported as failed so the
// client can retry.
func (s *Service) GetFinalizeStatus(ctx context.Context, owner string, token uuid.UUID) (*domain.FinalizeStatus, error) {
	session, err := s.loadOwnedSession(ctx, owner, token)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case domain.SessionStatusCompleted:
		status := &domain.FinalizeStatus{State: domain.FinalizeStateCompleted}
		if session.FinalKey != nil {
			status.FinalKey = *session.FinalKey
		}
		if session.FinalURL != nil {
			status.FinalURL = *session.FinalURL
		}
		return status, nil
	case domain.SessionStatusFinalizing:
		if time.Since(session.LastActivityAt) > s.asmCfg.StaleAfter {
			err := s.uow.SessionRepo().UpdateStatus(ctx, token,
				[]domain.SessionStatus{domain.SessionStatusFinalizing},
				domain.SessionStatusActive)
			if err != nil {
				// lost the race against the finalize finishing; report
				// the fresh state on the next poll
				return &domain.FinalizeStatus{State: domain.FinalizeStateFinalizing}, nil
			}
			s.logger.Warn("reset stale finalizing session", "token", token)
			return &domain.FinalizeStatus{
				State:   domain.FinalizeStateFailed,
				Message: "finalize timed out, retry finalize",
			}, nil
		}
		return &domain.FinalizeStatus{State: domain.FinalizeStateFinalizing}, nil
	case domain.SessionStatusActive, domain.SessionStatusPaused:
		// the poll contract knows exactly three states: an uploading session
		// means no finalize is running, either because none started or
		// because a failed attempt reset it
		return &domain.FinalizeStatus{
			State:   domain.FinalizeStateFailed,
			Message: "no finalize in progress, retry finalize",
		}, nil
	default:
		return nil, fmt.Errorf("%w: session is %s", domain.ErrStateConflict, session.Status)
	}
}
