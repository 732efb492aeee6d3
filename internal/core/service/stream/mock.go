package stream

import (
	"context"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStreamService is a mock implementation of StreamService
type MockStreamService struct {
	mock.Mock
}

// NewMockStreamService creates a new MockStreamService
func NewMockStreamService() *MockStreamService {
	return &MockStreamService{}
}

func (m *MockStreamService) Open(ctx context.Context, token uuid.UUID) (*domain.StreamSource, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreamSource), args.Error(1)
}
