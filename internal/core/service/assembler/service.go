package assembler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/config"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
)

// dispatchTimeout bounds one background assembly run.
const dispatchTimeout = 30 * time.Minute

// Service consolidates the chunks of a completed session into one durable
// object and promotes the session's final location. It implements
// port.Assembler.
type Service struct {
	uow         port.UnitOfWork
	storage     port.ObjectStorage
	publisher   port.EventPublisher
	thumbnailer port.ThumbnailGenerator
	uploadCfg   config.UploadConfig
	asmCfg      config.AssemblyConfig
	baseURL     string
	logger      *slog.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// NewService creates the assembler. publisher and thumbnailer may be nil.
func NewService(
	uow port.UnitOfWork,
	storage port.ObjectStorage,
	publisher port.EventPublisher,
	thumbnailer port.ThumbnailGenerator,
	uploadCfg config.UploadConfig,
	asmCfg config.AssemblyConfig,
	baseURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:         uow,
		storage:     storage,
		publisher:   publisher,
		thumbnailer: thumbnailer,
		uploadCfg:   uploadCfg,
		asmCfg:      asmCfg,
		baseURL:     baseURL,
		logger:      logger,
		inFlight:    make(map[uuid.UUID]struct{}),
	}
}

// Dispatch schedules assembly for a token in a background goroutine. A token
// already being assembled by this process is dropped; the durable job row
// makes the work discoverable again if the in-flight run dies.
func (s *Service) Dispatch(token uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := s.Assemble(ctx, token); err != nil {
			s.logger.Error("background assembly failed", "token", token, "error", err)
		}
	}()
}

// tryAcquire registers the token as in flight. It returns false when another
// goroutine in this process already holds it.
func (s *Service) tryAcquire(token uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, running := s.inFlight[token]; running {
		return false
	}
	s.inFlight[token] = struct{}{}
	return true
}

func (s *Service) release(token uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, token)
}

func (s *Service) publishEvent(ctx context.Context, subject string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		s.logger.Warn("failed to publish assembly event", "subject", subject, "error", err)
	}
}
