package assembler_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/adapters/repository"
	"github.com/aalapcshah/Klipz-sub005/internal/adapters/storage"
	"github.com/aalapcshah/Klipz-sub005/internal/config"
	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/service/assembler"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testUploadCfg = config.UploadConfig{
	StorageRetries:   2,
	RetryBackoffBase: time.Millisecond,
}

var testAsmCfg = config.AssemblyConfig{
	SmallFileThreshold: 10_000,
	HardSizeCap:        100_000,
	StaleAfter:         time.Minute,
	ProgressEvery:      20,
}

const testBaseURL = "http://localhost:8080"

func newTestAssembler(uow *repository.MockUnitOfWork, st *storage.MockStorage) *assembler.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return assembler.NewService(uow, st, nil, nil, testUploadCfg, testAsmCfg, testBaseURL, logger)
}

func completedStreamingSession(token uuid.UUID) *domain.UploadSession {
	streamKey := domain.StreamKey(token)
	streamURL := testBaseURL + "/api/v1/stream/" + token.String()
	return &domain.UploadSession{
		Token:       token,
		Owner:       "owner-1",
		Filename:    "clip.mp4",
		MimeType:    "video/mp4",
		Category:    domain.MediaCategoryVideo,
		TotalSize:   10,
		ChunkSize:   5,
		TotalChunks: 2,
		Status:      domain.SessionStatusCompleted,
		FinalKey:    &streamKey,
		FinalURL:    &streamURL,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func TestAssembler_Assemble_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestAssembler(mockUow, mockStorage)

	token := uuid.New()
	session := completedStreamingSession(token)
	chunks := []domain.ChunkRecord{
		{SessionToken: token, Index: 0, StorageKey: domain.ChunkStorageKey(token, 0), Status: domain.ChunkStatusUploaded, Size: 5},
		{SessionToken: token, Index: 1, StorageKey: domain.ChunkStorageKey(token, 1), Status: domain.ChunkStatusVerified, Size: 5},
	}

	mockUow.GetJobRepoMock().On("Claim", ctx, token, mock.Anything).Return(true, nil)
	mockUow.GetSessionRepoMock().On("FindByToken", ctx, token).Return(session, nil)
	mockUow.GetChunkRepoMock().On("FindBySession", ctx, token).Return(chunks, nil)
	mockStorage.On("GetObject", ctx, chunks[0].StorageKey).
		Return(io.NopCloser(strings.NewReader("hello")), nil)
	mockStorage.On("GetObject", ctx, chunks[1].StorageKey).
		Return(io.NopCloser(strings.NewReader("world")), nil)
	mockStorage.On("PutObject", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "media/owner-1/video/")
	}), mock.Anything, int64(10), "video/mp4").Return(nil)
	mockUow.On("Execute", ctx, mock.Anything).Return(nil)
	mockUow.GetSessionRepoMock().On("PromoteFinalLocation", ctx, token,
		mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "media/") }),
		testBaseURL+"/api/v1/stream/"+token.String()).Return(nil)
	mockUow.GetRecordRepoMock().On("PromoteLocation", ctx, token, mock.Anything, mock.Anything, int64(10)).
		Return(nil)
	mockStorage.On("RemoveByPrefix", ctx, domain.ChunkKeyPrefix(token)).Return(nil)
	mockUow.GetJobRepoMock().On("MarkDone", ctx, token).Return(nil)

	// Act
	err := service.Assemble(ctx, token)

	// Assert
	assert.NoError(t, err)
	mockUow.GetJobRepoMock().AssertExpectations(t)
	mockUow.GetSessionRepoMock().AssertExpectations(t)
	mockUow.GetRecordRepoMock().AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestAssembler_Assemble_ClaimLost(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestAssembler(mockUow, mockStorage)

	token := uuid.New()

	mockUow.GetJobRepoMock().On("Claim", ctx, token, mock.Anything).Return(false, nil)

	// Act
	err := service.Assemble(ctx, token)

	// Assert
	assert.NoError(t, err)
	mockUow.GetSessionRepoMock().AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
}

func TestAssembler_Assemble_SessionCancelledBeforeRun(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestAssembler(mockUow, mockStorage)

	token := uuid.New()

	mockUow.GetJobRepoMock().On("Claim", ctx, token, mock.Anything).Return(true, nil)
	mockUow.GetSessionRepoMock().On("FindByToken", ctx, token).
		Return((*domain.UploadSession)(nil), domain.ErrSessionNotFound)
	mockUow.GetJobRepoMock().On("MarkSkipped", ctx, token).Return(nil)

	// Act
	err := service.Assemble(ctx, token)

	// Assert
	assert.NoError(t, err)
	mockUow.GetJobRepoMock().AssertExpectations(t)
}

func TestAssembler_Assemble_AlreadyPromoted(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestAssembler(mockUow, mockStorage)

	token := uuid.New()
	durableKey := "media/owner-1/video/1700000000-abcd1234.mp4"
	session := completedStreamingSession(token)
	session.FinalKey = &durableKey

	mockUow.GetJobRepoMock().On("Claim", ctx, token, mock.Anything).Return(true, nil)
	mockUow.GetSessionRepoMock().On("FindByToken", ctx, token).Return(session, nil)
	mockUow.GetJobRepoMock().On("MarkDone", ctx, token).Return(nil)

	// Act
	err := service.Assemble(ctx, token)

	// Assert
	assert.NoError(t, err)
	mockStorage.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything)
	mockUow.GetJobRepoMock().AssertExpectations(t)
}

func TestAssembler_Assemble_HardCapSkips(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestAssembler(mockUow, mockStorage)

	token := uuid.New()
	session := completedStreamingSession(token)
	session.TotalSize = testAsmCfg.HardSizeCap + 1

	mockUow.GetJobRepoMock().On("Claim", ctx, token, mock.Anything).Return(true, nil)
	mockUow.GetSessionRepoMock().On("FindByToken", ctx, token).Return(session, nil)
	mockUow.GetJobRepoMock().On("MarkSkipped", ctx, token).Return(nil)

	// Act
	err := service.Assemble(ctx, token)

	// Assert
	assert.NoError(t, err)
	mockStorage.AssertNotCalled(t, "PutObject",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockUow.GetJobRepoMock().AssertExpectations(t)
}

func TestAssembler_Assemble_CancellationFence(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestAssembler(mockUow, mockStorage)

	token := uuid.New()
	session := completedStreamingSession(token)
	session.TotalChunks = 1
	session.TotalSize = 5
	chunks := []domain.ChunkRecord{
		{SessionToken: token, Index: 0, StorageKey: domain.ChunkStorageKey(token, 0), Status: domain.ChunkStatusUploaded, Size: 5},
	}

	mockUow.GetJobRepoMock().On("Claim", ctx, token, mock.Anything).Return(true, nil)
	// first read sees the completed session, the post-upload re-check sees it gone
	mockUow.GetSessionRepoMock().On("FindByToken", ctx, token).Return(session, nil).Once()
	mockUow.GetChunkRepoMock().On("FindBySession", ctx, token).Return(chunks, nil)
	mockStorage.On("GetObject", ctx, chunks[0].StorageKey).
		Return(io.NopCloser(strings.NewReader("hello")), nil)
	mockStorage.On("PutObject", ctx, mock.Anything, mock.Anything, int64(5), "video/mp4").Return(nil)
	mockUow.GetSessionRepoMock().On("FindByToken", ctx, token).
		Return((*domain.UploadSession)(nil), domain.ErrSessionNotFound).Once()
	mockStorage.On("RemoveObject", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "media/")
	})).Return(nil)
	mockUow.GetJobRepoMock().On("MarkSkipped", ctx, token).Return(nil)

	// Act
	err := service.Assemble(ctx, token)

	// Assert
	assert.NoError(t, err)
	mockUow.GetSessionRepoMock().AssertNotCalled(t, "PromoteFinalLocation",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockStorage.AssertExpectations(t)
	mockUow.GetJobRepoMock().AssertExpectations(t)
}

func TestAssembler_Assemble_ActualBytesOverCapSkips(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestAssembler(mockUow, mockStorage)

	token := uuid.New()
	session := completedStreamingSession(token)
	// declared size is fine, the bytes actually stored are not
	session.TotalSize = 10
	session.TotalChunks = 1
	chunks := []domain.ChunkRecord{
		{SessionToken: token, Index: 0, StorageKey: domain.ChunkStorageKey(token, 0), Status: domain.ChunkStatusUploaded, Size: 10},
	}
	oversized := strings.Repeat("a", int(testAsmCfg.HardSizeCap)+1)

	mockUow.GetJobRepoMock().On("Claim", ctx, token, mock.Anything).Return(true, nil)
	mockUow.GetSessionRepoMock().On("FindByToken", ctx, token).Return(session, nil)
	mockUow.GetChunkRepoMock().On("FindBySession", ctx, token).Return(chunks, nil)
	mockStorage.On("GetObject", ctx, chunks[0].StorageKey).
		Return(io.NopCloser(strings.NewReader(oversized)), nil)
	mockUow.GetJobRepoMock().On("MarkSkipped", ctx, token).Return(nil)

	// Act
	err := service.Assemble(ctx, token)

	// Assert
	assert.NoError(t, err)
	mockStorage.AssertNotCalled(t, "PutObject",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockUow.GetJobRepoMock().AssertExpectations(t)
}

func TestAssembler_Assemble_GuardDeduplicatesConcurrentRuns(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestAssembler(mockUow, mockStorage)

	token := uuid.New()
	entered := make(chan struct{})
	release := make(chan struct{})
	mockUow.GetJobRepoMock().On("Claim", ctx, token, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(false, nil)

	firstDone := make(chan error, 1)
	go func() { firstDone <- service.Assemble(ctx, token) }()
	<-entered

	// Act: a second run for the same token while the first holds the guard
	err := service.Assemble(ctx, token)
	close(release)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, <-firstDone)
	mockUow.GetJobRepoMock().AssertNumberOfCalls(t, "Claim", 1)
}

func TestAssembler_Assemble_ChunkFetchFailureMarksFailed(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := newTestAssembler(mockUow, mockStorage)

	token := uuid.New()
	session := completedStreamingSession(token)
	chunks := []domain.ChunkRecord{
		{SessionToken: token, Index: 0, StorageKey: domain.ChunkStorageKey(token, 0), Status: domain.ChunkStatusUploaded, Size: 5},
	}

	mockUow.GetJobRepoMock().On("Claim", ctx, token, mock.Anything).Return(true, nil)
	mockUow.GetSessionRepoMock().On("FindByToken", ctx, token).Return(session, nil)
	mockUow.GetChunkRepoMock().On("FindBySession", ctx, token).Return(chunks, nil)
	mockStorage.On("GetObject", ctx, chunks[0].StorageKey).
		Return(io.NopCloser(strings.NewReader("")), assert.AnError)
	mockUow.GetJobRepoMock().On("MarkFailed", ctx, token, mock.Anything).Return(nil)

	// Act
	err := service.Assemble(ctx, token)

	// Assert
	assert.Error(t, err)
	mockUow.GetJobRepoMock().AssertExpectations(t)
	// fetches are not retried during assembly; recovery requeues the job
	mockStorage.AssertNumberOfCalls(t, "GetObject", 1)
}
