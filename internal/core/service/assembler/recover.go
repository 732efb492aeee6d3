package assembler

import (
	"context"
	"errors"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
)

// Recover re-dispatches assembly for jobs that never ran to completion:
// queued or failed jobs, and running jobs whose last update is older than the
// stale window (a crash mid-assembly). Called once on process startup.
func (s *Service) Recover(ctx context.Context) error {
	staleBefore := time.Now().Add(-s.asmCfg.StaleAfter)
	jobs, err := s.uow.JobRepo().FindRecoverable(ctx, staleBefore)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		session, err := s.uow.SessionRepo().FindByToken(ctx, job.Token)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				if err := s.uow.JobRepo().MarkSkipped(ctx, job.Token); err != nil {
					s.logger.Error("failed to skip orphaned assembly job", "token", job.Token, "error", err)
				}
				continue
			}
			return err
		}

		if session.HasDurableLocation() {
			// crashed after promotion, before the job row was updated
			if err := s.uow.JobRepo().MarkDone(ctx, job.Token); err != nil {
				s.logger.Error("failed to close finished assembly job", "token", job.Token, "error", err)
			}
			continue
		}

		// requeue so the claim succeeds again, then dispatch
		if err := s.uow.JobRepo().Enqueue(ctx, job.Token); err != nil {
			s.logger.Error("failed to requeue assembly job", "token", job.Token, "error", err)
			continue
		}
		s.logger.Info("recovering interrupted assembly", "token", job.Token, "attempts", job.Attempts)
		s.Dispatch(job.Token)
	}

	return nil
}
