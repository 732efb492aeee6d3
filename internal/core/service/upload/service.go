package upload

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/config"
	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
)

// Service implements session bookkeeping, chunk intake and the finalize
// protocol (port.SessionService and port.UploadService).
type Service struct {
	uow        port.UnitOfWork
	storage    port.ObjectStorage
	dispatcher port.AssemblyDispatcher
	publisher  port.EventPublisher
	uploadCfg  config.UploadConfig
	asmCfg     config.AssemblyConfig
	baseURL    string
	logger     *slog.Logger
}

// NewService creates the upload service. publisher may be nil when no event
// broker is configured.
func NewService(
	uow port.UnitOfWork,
	storage port.ObjectStorage,
	dispatcher port.AssemblyDispatcher,
	publisher port.EventPublisher,
	uploadCfg config.UploadConfig,
	asmCfg config.AssemblyConfig,
	baseURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:        uow,
		storage:    storage,
		dispatcher: dispatcher,
		publisher:  publisher,
		uploadCfg:  uploadCfg,
		asmCfg:     asmCfg,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// loadOwnedSession fetches a session scoped to its owner and lazily expires
// it when the expiry has passed, so clients see expired state without
// waiting for the periodic sweep.
func (s *Service) loadOwnedSession(ctx context.Context, owner string, token uuid.UUID) (*domain.UploadSession, error) {
	session, err := s.uow.SessionRepo().FindByTokenAndOwner(ctx, token, owner)
	if err != nil {
		return nil, err
	}

	if session.Status == domain.SessionStatusExpired {
		return nil, domain.ErrSessionExpired
	}

	if time.Now().After(session.ExpiresAt) &&
		(session.Status == domain.SessionStatusActive || session.Status == domain.SessionStatusPaused) {
		err := s.uow.SessionRepo().UpdateStatus(ctx, token,
			[]domain.SessionStatus{domain.SessionStatusActive, domain.SessionStatusPaused},
			domain.SessionStatusExpired)
		if err != nil {
			return nil, err
		}
		return nil, domain.ErrSessionExpired
	}

	return session, nil
}

// slideExpiry pushes the expiry window forward after successful activity
func (s *Service) slideExpiry(ctx context.Context, token uuid.UUID) error {
	now := time.Now()
	return s.uow.SessionRepo().Touch(ctx, token, now, now.Add(s.uploadCfg.SessionTTL))
}

// streamLocator builds the streaming final location for a token
func (s *Service) streamLocator(token uuid.UUID) (string, string) {
	key := domain.StreamKey(token)
	url := fmt.Sprintf("%s/api/v1/stream/%s", s.baseURL, token)
	return key, url
}

// publishEvent emits a lifecycle event; publish failures are logged, never
// propagated.
func (s *Service) publishEvent(ctx context.Context, subject string, event domain.LifecycleEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		s.logger.Warn("failed to publish lifecycle event", "subject", subject, "error", err)
	}
}
