package thumbnail

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGenerator is a mock implementation of port.ThumbnailGenerator
type MockGenerator struct {
	mock.Mock
}

// NewMockGenerator creates a new MockGenerator
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) Generate(ctx context.Context, sourceURL string) (string, error) {
	args := m.Called(ctx, sourceURL)
	return args.String(0), args.Error(1)
}
