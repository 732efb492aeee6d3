package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
)

// FinalizeUpload transitions a fully-uploaded session into a usable single
// artifact. Small files are assembled inline; large files get a streaming
// locator immediately and a background assembly job. The call is idempotent:
// a completed session returns its cached final location, a finalizing one an
// in-progress indicator.
func (s *Service) FinalizeUpload(ctx context.Context, owner string, token uuid.UUID) (*domain.FinalizeResult, error) {
	session, err := s.loadOwnedSession(ctx, owner, token)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case domain.SessionStatusCompleted:
		return completedResult(session), nil
	case domain.SessionStatusFinalizing:
		return &domain.FinalizeResult{Finalizing: true}, nil
	case domain.SessionStatusActive, domain.SessionStatusPaused:
	default:
		return nil, fmt.Errorf("%w: cannot finalize while %s", domain.ErrStateConflict, session.Status)
	}

	pending, err := s.uow.ChunkRepo().CountPending(ctx, token)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrChunksPending, pending)
	}

	err = s.uow.SessionRepo().UpdateStatus(ctx, token,
		[]domain.SessionStatus{domain.SessionStatusActive, domain.SessionStatusPaused},
		domain.SessionStatusFinalizing)
	if err != nil {
		// a concurrent finalize won the race
		return &domain.FinalizeResult{Finalizing: true}, nil
	}

	if session.TotalSize <= s.asmCfg.SmallFileThreshold {
		return s.finalizeSmall(ctx, session)
	}
	return s.finalizeLarge(ctx, session)
}

// finalizeSmall downloads all chunks in order, concatenates them and uploads
// the consolidated object before returning. Any unrecoverable failure resets
// the session to active so the client can safely call finalize again.
func (s *Service) finalizeSmall(ctx context.Context, session *domain.UploadSession) (*domain.FinalizeResult, error) {
	token := session.Token

	chunks, err := s.uow.ChunkRepo().FindBySession(ctx, token)
	if err != nil {
		return nil, s.resetToActive(ctx, token, err)
	}

	var buf bytes.Buffer
	buf.Grow(int(session.TotalSize))
	for _, chunk := range chunks {
		err := withRetry(ctx, s.uploadCfg.StorageRetries, s.uploadCfg.RetryBackoffBase, func() error {
			reader, getErr := s.storage.GetObject(ctx, chunk.StorageKey)
			if getErr != nil {
				return getErr
			}
			defer reader.Close()
			_, copyErr := io.Copy(&buf, reader)
			return copyErr
		})
		if err != nil {
			return nil, s.resetToActive(ctx, token, fmt.Errorf("chunk %d: %w", chunk.Index, err))
		}
	}

	finalKey := domain.DurableObjectKey(session.Owner, session.Category, session.Filename)
	err = withRetry(ctx, s.uploadCfg.StorageRetries, s.uploadCfg.RetryBackoffBase, func() error {
		return s.storage.PutObject(ctx, finalKey, bytes.NewReader(buf.Bytes()), int64(buf.Len()), session.MimeType)
	})
	if err != nil {
		return nil, s.resetToActive(ctx, token, err)
	}

	// the gateway resolves durable keys to presigned URLs at read time,
	// so the stored URL stays stable
	_, finalURL := s.streamLocator(token)

	now := time.Now()
	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		record := domain.MediaRecord{
			ID:           uuid.New(),
			Owner:        session.Owner,
			Category:     session.Category,
			Filename:     session.Filename,
			MimeType:     session.MimeType,
			SizeBytes:    session.TotalSize,
			StorageKey:   finalKey,
			URL:          finalURL,
			SessionToken: token,
		}
		if err := uow.RecordRepo().Create(ctx, record); err != nil {
			return err
		}
		if err := uow.SessionRepo().SetFinalLocation(ctx, token, finalKey, finalURL, now); err != nil {
			return err
		}
		return uow.SessionRepo().UpdateStatus(ctx, token,
			[]domain.SessionStatus{domain.SessionStatusFinalizing},
			domain.SessionStatusCompleted)
	})
	if txErr != nil {
		return nil, s.resetToActive(ctx, token, txErr)
	}

	s.publishEvent(ctx, domain.SubjectUploadFinalized, domain.LifecycleEvent{
		Token:      token,
		Owner:      session.Owner,
		Category:   session.Category,
		FinalKey:   finalKey,
		FinalURL:   finalURL,
		SizeBytes:  session.TotalSize,
		OccurredAt: now,
	})

	return &domain.FinalizeResult{Completed: true, FinalKey: finalKey, FinalURL: finalURL}, nil
}

// finalizeLarge hands out a streaming locator immediately and dispatches
// background assembly without awaiting it. The session is completed right
// away; finalize never blocks on reassembly.
func (s *Service) finalizeLarge(ctx context.Context, session *domain.UploadSession) (*domain.FinalizeResult, error) {
	token := session.Token
	finalKey, finalURL := s.streamLocator(token)

	now := time.Now()
	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		record := domain.MediaRecord{
			ID:           uuid.New(),
			Owner:        session.Owner,
			Category:     session.Category,
			Filename:     session.Filename,
			MimeType:     session.MimeType,
			SizeBytes:    session.TotalSize,
			StorageKey:   finalKey,
			URL:          finalURL,
			SessionToken: token,
		}
		if err := uow.RecordRepo().Create(ctx, record); err != nil {
			return err
		}
		if err := uow.SessionRepo().SetFinalLocation(ctx, token, finalKey, finalURL, now); err != nil {
			return err
		}
		if err := uow.SessionRepo().UpdateStatus(ctx, token,
			[]domain.SessionStatus{domain.SessionStatusFinalizing},
			domain.SessionStatusCompleted); err != nil {
			return err
		}
		return uow.JobRepo().Enqueue(ctx, token)
	})
	if txErr != nil {
		return nil, s.resetToActive(ctx, token, txErr)
	}

	s.publishEvent(ctx, domain.SubjectUploadFinalized, domain.LifecycleEvent{
		Token:      token,
		Owner:      session.Owner,
		Category:   session.Category,
		FinalKey:   finalKey,
		FinalURL:   finalURL,
		SizeBytes:  session.TotalSize,
		OccurredAt: now,
	})

	s.dispatcher.Dispatch(token)

	return &domain.FinalizeResult{Completed: true, FinalKey: finalKey, FinalURL: finalURL}, nil
}

// resetToActive rolls the session back to a retry-safe status and surfaces
// the cause as a retryable storage error.
func (s *Service) resetToActive(ctx context.Context, token uuid.UUID, cause error) error {
	err := s.uow.SessionRepo().UpdateStatus(ctx, token,
		[]domain.SessionStatus{domain.SessionStatusFinalizing},
		domain.SessionStatusActive)
	if err != nil {
		s.logger.Error("failed to reset session after finalize failure", "token", token, "error", err)
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, cause)
}

func completedResult(session *domain.UploadSession) *domain.FinalizeResult {
	result := &domain.FinalizeResult{Completed: true}
	if session.FinalKey != nil {
		result.FinalKey = *session.FinalKey
	}
	if session.FinalURL != nil {
		result.FinalURL = *session.FinalURL
	}
	return result
}
