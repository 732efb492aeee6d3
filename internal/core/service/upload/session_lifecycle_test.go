package upload_test

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

func TestUploadService_PauseSession_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestService(mockUow, mockStorage, nil)

	token := uuid.New()
	owner := "owner-1"

	mockUow.GetSessionRepoMock().On("FindByTokenAndOwner", ctx, token, owner).
		Return(activeSession(token, owner), nil)
	mockUow.GetSessionRepoMock().On("UpdateStatus", ctx, token,
		[]domain.SessionStatus{domain.SessionStatusActive}, domain.SessionStatusPaused).Return(nil)
	mockUow.GetSessionRepoMock().On("Touch", ctx, token, mock.Anything, mock.Anything).Return(nil)

	// Act
	err := service.PauseSession(ctx, owner, token)

	// Assert
	assert.NoError(t, err)
	mockUow.GetSessionRepoMock().AssertExpectations(t)
}

func TestUploadService_PauseSession_NotActive(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestService(mockUow, mockStorage, nil)

	token := uuid.New()
	owner := "owner-1"
	session := activeSession(token, owner)
	session.Status = domain.SessionStatusFinalizing

	mockUow.GetSessionRepoMock().On("FindByTokenAndOwner", ctx, token, owner).Return(session, nil)
	mockUow.GetSessionRepoMock().On("UpdateStatus", ctx, token,
		[]domain.SessionStatus{domain.SessionStatusActive}, domain.SessionStatusPaused).
		Return(domain.ErrStateConflict)

	// Act
	err := service.PauseSession(ctx, owner, token)

	// Assert
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestUploadService_CancelSession_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestService(mockUow, mockStorage, nil)

	token := uuid.New()
	owner := "owner-1"

	mockUow.GetSessionRepoMock().On("FindByTokenAndOwner", ctx, token, owner).
		Return(activeSession(token, owner), nil)
	mockUow.On("Execute", ctx, mock.Anything).Return(nil)
	mockUow.GetRecordRepoMock().On("DeleteBySessionToken", ctx, token).Return(nil)
	mockUow.GetChunkRepoMock().On("DeleteBySession", ctx, token).Return(nil)
	mockUow.GetSessionRepoMock().On("Delete", ctx, token).Return(nil)
	mockStorage.On("RemoveByPrefix", ctx, domain.ChunkKeyPrefix(token)).Return(nil)

	// Act
	err := service.CancelSession(ctx, owner, token)

	// Assert
	assert.NoError(t, err)
	mockUow.AssertExpectations(t)
	mockUow.GetSessionRepoMock().AssertExpectations(t)
	mockUow.GetChunkRepoMock().AssertExpectations(t)
	mockUow.GetRecordRepoMock().AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestUploadService_CancelSession_CompletedRejected(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestService(mockUow, mockStorage, nil)

	token := uuid.New()
	owner := "owner-1"
	session := activeSession(token, owner)
	session.Status = domain.SessionStatusCompleted

	mockUow.GetSessionRepoMock().On("FindByTokenAndOwner", ctx, token, owner).Return(session, nil)

	// Act
	err := service.CancelSession(ctx, owner, token)

	// Assert
	assert.ErrorIs(t, err, domain.ErrStateConflict)
	mockUow.GetSessionRepoMock().AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUploadService_CancelSession_StorageCleanupFailureIsNotFatal(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestService(mockUow, mockStorage, nil)

	token := uuid.New()
	owner := "owner-1"

	mockUow.GetSessionRepoMock().On("FindByTokenAndOwner", ctx, token, owner).
		Return(activeSession(token, owner), nil)
	mockUow.On("Execute", ctx, mock.Anything).Return(nil)
	mockUow.GetRecordRepoMock().On("DeleteBySessionToken", ctx, token).Return(nil)
	mockUow.GetChunkRepoMock().On("DeleteBySession", ctx, token).Return(nil)
	mockUow.GetSessionRepoMock().On("Delete", ctx, token).Return(nil)
	mockStorage.On("RemoveByPrefix", ctx, domain.ChunkKeyPrefix(token)).
		Return(assert.AnError)

	// Act
	err := service.CancelSession(ctx, owner, token)

	// Assert
	assert.NoError(t, err)
}

func TestUploadService_ListActiveSessions(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestService(mockUow, mockStorage, nil)

	owner := "owner-1"
	sessions := []domain.UploadSession{
		*activeSession(uuid.New(), owner),
		*activeSession(uuid.New(), owner),
	}

	mockUow.GetSessionRepoMock().On("ListActive", ctx, owner).Return(sessions, nil)

	// Act
	got, err := service.ListActiveSessions(ctx, owner)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, got, 2)
}
