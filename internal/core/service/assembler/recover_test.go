package assembler_test

import (
	"context"
	"testing"

	"github.com/aalapcshah/Klipz-sub005/internal/adapters/repository"
	"github.com/aalapcshah/Klipz-sub005/internal/adapters/storage"
	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAssembler_Recover_ClosesAlreadyPromotedJobs(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestAssembler(mockUow, mockStorage)

	token := uuid.New()
	durableKey := "media/owner-1/video/1700000000-abcd1234.mp4"
	session := completedStreamingSession(token)
	session.FinalKey = &durableKey

	mockUow.GetJobRepoMock().On("FindRecoverable", ctx, mock.Anything).
		Return([]domain.AssemblyJob{{Token: token, Status: domain.AssemblyJobStatusRunning}}, nil)
	mockUow.GetSessionRepoMock().On("FindByToken", ctx, token).Return(session, nil)
	mockUow.GetJobRepoMock().On("MarkDone", ctx, token).Return(nil)

	// Act
	err := service.Recover(ctx)

	// Assert
	assert.NoError(t, err)
	mockUow.GetJobRepoMock().AssertExpectations(t)
	mockUow.GetJobRepoMock().AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestAssembler_Recover_SkipsOrphanedJobs(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestAssembler(mockUow, mockStorage)

	token := uuid.New()

	mockUow.GetJobRepoMock().On("FindRecoverable", ctx, mock.Anything).
		Return([]domain.AssemblyJob{{Token: token, Status: domain.AssemblyJobStatusQueued}}, nil)
	mockUow.GetSessionRepoMock().On("FindByToken", ctx, token).
		Return((*domain.UploadSession)(nil), domain.ErrSessionNotFound)
	mockUow.GetJobRepoMock().On("MarkSkipped", ctx, token).Return(nil)

	// Act
	err := service.Recover(ctx)

	// Assert
	assert.NoError(t, err)
	mockUow.GetJobRepoMock().AssertExpectations(t)
}

func TestAssembler_Recover_RequeuesInterruptedJobs(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestAssembler(mockUow, mockStorage)

	token := uuid.New()
	session := completedStreamingSession(token)

	mockUow.GetJobRepoMock().On("FindRecoverable", ctx, mock.Anything).
		Return([]domain.AssemblyJob{{Token: token, Status: domain.AssemblyJobStatusFailed, Attempts: 1}}, nil)
	mockUow.GetSessionRepoMock().On("FindByToken", ctx, token).Return(session, nil)
	mockUow.GetJobRepoMock().On("Enqueue", ctx, token).Return(nil)
	// the dispatched goroutine claims the requeued job; losing that race here is fine
	mockUow.GetJobRepoMock().On("Claim", mock.Anything, token, mock.Anything).Return(false, nil).Maybe()
	mockUow.GetSessionRepoMock().On("FindByToken", mock.Anything, token).Return(session, nil).Maybe()

	// Act
	err := service.Recover(ctx)

	// Assert
	assert.NoError(t, err)
	mockUow.GetJobRepoMock().AssertCalled(t, "Enqueue", ctx, token)
}
