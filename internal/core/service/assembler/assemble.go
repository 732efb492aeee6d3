package assembler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
)

// Assemble consolidates every chunk of the session into one durable object,
// then promotes the session and its media record from the streaming locator
// to the durable location. It is safe to call concurrently and repeatedly
// for the same token: the in-process guard and the job claim make duplicate
// runs no-ops, and the session re-check before promotion makes a cancel
// racing a running assembly win.
func (s *Service) Assemble(ctx context.Context, token uuid.UUID) error {
	if !s.tryAcquire(token) {
		s.logger.Debug("assembly already in flight", "token", token)
		return nil
	}
	defer s.release(token)

	claimed, err := s.uow.JobRepo().Claim(ctx, token, time.Now())
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	session, err := s.uow.SessionRepo().FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			// cancelled between finalize and assembly
			return s.skip(ctx, token, "session no longer exists")
		}
		return s.fail(ctx, token, err)
	}
	if session.Status != domain.SessionStatusCompleted {
		return s.skip(ctx, token, fmt.Sprintf("session is %s, not completed", session.Status))
	}
	if session.HasDurableLocation() {
		// an earlier run already promoted; nothing left to do
		return s.uow.JobRepo().MarkDone(ctx, token)
	}

	if session.TotalSize > s.asmCfg.HardSizeCap {
		return s.skipOverCap(ctx, session, session.TotalSize)
	}

	written, scratch, err := s.consolidate(ctx, session)
	if err != nil {
		return s.fail(ctx, token, err)
	}
	defer func() {
		scratch.Close()
		os.Remove(scratch.Name())
	}()

	if written != session.TotalSize {
		s.logger.Warn("consolidated size differs from declared size",
			"token", token, "written", written, "declared", session.TotalSize)
	}
	// the declared size passed the cap check; the actual bytes must too
	if written > s.asmCfg.HardSizeCap {
		return s.skipOverCap(ctx, session, written)
	}

	durableKey := domain.DurableObjectKey(session.Owner, session.Category, session.Filename)
	err = withRetry(ctx, s.uploadCfg.StorageRetries, s.uploadCfg.RetryBackoffBase, func() error {
		if _, err := scratch.Seek(0, io.SeekStart); err != nil {
			return err
		}
		return s.storage.PutObject(ctx, durableKey, scratch, written, session.MimeType)
	})
	if err != nil {
		return s.fail(ctx, token, fmt.Errorf("upload consolidated object: %w", err))
	}

	// re-check before promoting: a cancel racing this run wins
	current, err := s.uow.SessionRepo().FindByToken(ctx, token)
	if err != nil || current.Status != domain.SessionStatusCompleted {
		if removeErr := s.storage.RemoveObject(ctx, durableKey); removeErr != nil {
			s.logger.Warn("failed to remove orphaned durable object", "key", durableKey, "error", removeErr)
		}
		return s.skip(ctx, token, "session cancelled during assembly")
	}

	durableURL := fmt.Sprintf("%s/api/v1/stream/%s", s.baseURL, token)
	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.SessionRepo().PromoteFinalLocation(ctx, token, durableKey, durableURL); err != nil {
			return err
		}
		return uow.RecordRepo().PromoteLocation(ctx, token, durableKey, durableURL, written)
	})
	if txErr != nil {
		if errors.Is(txErr, domain.ErrStateConflict) {
			// already promoted by a concurrent run
			return s.uow.JobRepo().MarkDone(ctx, token)
		}
		return s.fail(ctx, token, txErr)
	}

	if err := s.storage.RemoveByPrefix(ctx, domain.ChunkKeyPrefix(token)); err != nil {
		s.logger.Warn("failed to remove chunk objects after assembly", "token", token, "error", err)
	}

	s.generateThumbnail(ctx, session, durableKey)

	if err := s.uow.JobRepo().MarkDone(ctx, token); err != nil {
		return err
	}

	s.publishEvent(ctx, domain.SubjectAssemblyDone, domain.LifecycleEvent{
		Token:      token,
		Owner:      session.Owner,
		Category:   session.Category,
		FinalKey:   durableKey,
		FinalURL:   durableURL,
		SizeBytes:  written,
		OccurredAt: time.Now(),
	})

	s.logger.Info("assembly completed", "token", token, "key", durableKey, "bytes", written)
	return nil
}

// consolidate streams every chunk in index order into a scratch file, keeping
// memory usage bounded by the copy buffer regardless of file size. Chunk
// fetches are not retried: a failure aborts the attempt and the recovery pass
// requeues the whole job. The caller owns the returned file.
func (s *Service) consolidate(ctx context.Context, session *domain.UploadSession) (int64, *os.File, error) {
	chunks, err := s.uow.ChunkRepo().FindBySession(ctx, session.Token)
	if err != nil {
		return 0, nil, err
	}

	scratch, err := os.CreateTemp(s.asmCfg.ScratchDir, "assembly-*")
	if err != nil {
		return 0, nil, err
	}

	var written int64
	for _, chunk := range chunks {
		if !chunk.Status.IsUploaded() {
			scratch.Close()
			os.Remove(scratch.Name())
			return 0, nil, fmt.Errorf("%w: chunk %d", domain.ErrChunksPending, chunk.Index)
		}

		reader, err := s.storage.GetObject(ctx, chunk.StorageKey)
		if err != nil {
			scratch.Close()
			os.Remove(scratch.Name())
			return 0, nil, fmt.Errorf("fetch chunk %d: %w", chunk.Index, err)
		}

		n, copyErr := io.Copy(scratch, reader)
		reader.Close()
		written += n
		if copyErr != nil {
			scratch.Close()
			os.Remove(scratch.Name())
			return 0, nil, fmt.Errorf("copy chunk %d: %w", chunk.Index, copyErr)
		}

		if s.asmCfg.ProgressEvery > 0 && (chunk.Index+1)%s.asmCfg.ProgressEvery == 0 {
			s.logger.Info("assembly progress",
				"token", session.Token, "chunks", chunk.Index+1, "total", session.TotalChunks)
		}
	}

	return written, scratch, nil
}

// generateThumbnail asks the thumbnail service for a preview of video media.
// Failures are logged only.
func (s *Service) generateThumbnail(ctx context.Context, session *domain.UploadSession, durableKey string) {
	if s.thumbnailer == nil || session.Category != domain.MediaCategoryVideo {
		return
	}

	sourceURL, _, err := s.storage.GeneratePresignedURLForDownload(ctx, durableKey)
	if err != nil {
		s.logger.Warn("failed to presign source for thumbnail", "token", session.Token, "error", err)
		return
	}

	thumbURL, err := s.thumbnailer.Generate(ctx, sourceURL)
	if err != nil {
		s.logger.Warn("thumbnail generation failed", "token", session.Token, "error", err)
		return
	}

	if err := s.uow.RecordRepo().SetThumbnail(ctx, session.Token, thumbURL); err != nil {
		s.logger.Warn("failed to store thumbnail url", "token", session.Token, "error", err)
	}
}

// skipOverCap closes a job whose size exceeds the hard cap; the streaming
// locator stays as the permanent serving path.
func (s *Service) skipOverCap(ctx context.Context, session *domain.UploadSession, size int64) error {
	s.logger.Info("size exceeds hard cap, streaming locator stays permanent",
		"token", session.Token, "size", size, "cap", s.asmCfg.HardSizeCap)
	if err := s.uow.JobRepo().MarkSkipped(ctx, session.Token); err != nil {
		return err
	}
	s.publishEvent(ctx, domain.SubjectAssemblySkipped, domain.LifecycleEvent{
		Token:      session.Token,
		Owner:      session.Owner,
		Category:   session.Category,
		SizeBytes:  size,
		OccurredAt: time.Now(),
	})
	return nil
}

func (s *Service) skip(ctx context.Context, token uuid.UUID, reason string) error {
	s.logger.Info("assembly skipped", "token", token, "reason", reason)
	return s.uow.JobRepo().MarkSkipped(ctx, token)
}

func (s *Service) fail(ctx context.Context, token uuid.UUID, cause error) error {
	if err := s.uow.JobRepo().MarkFailed(ctx, token, cause.Error()); err != nil {
		s.logger.Error("failed to mark assembly job failed", "token", token, "error", err)
	}
	return cause
}
