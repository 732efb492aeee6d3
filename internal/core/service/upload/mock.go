package upload

import (
	"context"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockService is a mock implementation of SessionService and UploadService
type MockService struct {
	mock.Mock
}

// NewMockService creates a new MockService
func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) CreateSession(ctx context.Context, owner string, in domain.CreateSessionInput) (*domain.CreateSessionResult, error) {
	args := m.Called(ctx, owner, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreateSessionResult), args.Error(1)
}

func (m *MockService) GetSessionStatus(ctx context.Context, owner string, token uuid.UUID) (*domain.SessionProgress, error) {
	args := m.Called(ctx, owner, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionProgress), args.Error(1)
}

func (m *MockService) PauseSession(ctx context.Context, owner string, token uuid.UUID) error {
	args := m.Called(ctx, owner, token)
	return args.Error(0)
}

func (m *MockService) CancelSession(ctx context.Context, owner string, token uuid.UUID) error {
	args := m.Called(ctx, owner, token)
	return args.Error(0)
}

func (m *MockService) ListActiveSessions(ctx context.Context, owner string) ([]domain.UploadSession, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UploadSession), args.Error(1)
}

func (m *MockService) UploadChunk(ctx context.Context, owner string, token uuid.UUID, index int, payload []byte, checksum string) (*domain.ChunkProgress, error) {
	args := m.Called(ctx, owner, token, index, payload, checksum)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChunkProgress), args.Error(1)
}

func (m *MockService) FinalizeUpload(ctx context.Context, owner string, token uuid.UUID) (*domain.FinalizeResult, error) {
	args := m.Called(ctx, owner, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinalizeResult), args.Error(1)
}

func (m *MockService) GetFinalizeStatus(ctx context.Context, owner string, token uuid.UUID) (*domain.FinalizeStatus, error) {
	args := m.Called(ctx, owner, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinalizeStatus), args.Error(1)
}
