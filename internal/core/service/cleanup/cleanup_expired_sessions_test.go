package cleanup_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/adapters/repository"
	"github.com/aalapcshah/Klipz-sub005/internal/adapters/storage"
	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/service/cleanup"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCleanupService_CleanupExpiredSessions_NoExpiredSessions(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	logger := slog.Default()
	service := cleanup.NewCleanupService(mockUow, mockStorage, logger)

	now := time.Now()
	mockUow.GetSessionRepoMock().On("ExpireStale", ctx, now).Return([]uuid.UUID{}, nil)

	// Act
	count, err := service.CleanupExpiredSessions(ctx, now)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
	mockUow.GetSessionRepoMock().AssertExpectations(t)
}

func TestCleanupService_CleanupExpiredSessions_MultipleSessions(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	logger := slog.Default()
	service := cleanup.NewCleanupService(mockUow, mockStorage, logger)

	now := time.Now()
	token1 := uuid.New()
	token2 := uuid.New()

	mockUow.GetSessionRepoMock().On("ExpireStale", ctx, now).Return([]uuid.UUID{token1, token2}, nil)
	mockStorage.On("RemoveByPrefix", ctx, domain.ChunkKeyPrefix(token1)).Return(nil)
	mockStorage.On("RemoveByPrefix", ctx, domain.ChunkKeyPrefix(token2)).Return(nil)

	// Act
	count, err := service.CleanupExpiredSessions(ctx, now)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
	mockUow.GetSessionRepoMock().AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestCleanupService_CleanupExpiredSessions_ExpireStaleError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	logger := slog.Default()
	service := cleanup.NewCleanupService(mockUow, mockStorage, logger)

	now := time.Now()
	expectedError := errors.New("database error")

	mockUow.GetSessionRepoMock().On("ExpireStale", ctx, now).Return([]uuid.UUID{}, expectedError)

	// Act
	count, err := service.CleanupExpiredSessions(ctx, now)

	// Assert
	assert.Error(t, err)
	assert.Equal(t, expectedError, err)
	assert.Equal(t, int64(0), count)
}

func TestCleanupService_CleanupExpiredSessions_StorageFailureIsNotFatal(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	logger := slog.Default()
	service := cleanup.NewCleanupService(mockUow, mockStorage, logger)

	now := time.Now()
	token1 := uuid.New()
	token2 := uuid.New()

	mockUow.GetSessionRepoMock().On("ExpireStale", ctx, now).Return([]uuid.UUID{token1, token2}, nil)
	mockStorage.On("RemoveByPrefix", ctx, domain.ChunkKeyPrefix(token1)).Return(errors.New("minio down"))
	mockStorage.On("RemoveByPrefix", ctx, domain.ChunkKeyPrefix(token2)).Return(nil)

	// Act
	count, err := service.CleanupExpiredSessions(ctx, now)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
	mockStorage.AssertExpectations(t)
}
