package repository

import (
	"context"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUploadSessionRepository struct {
	mock.Mock
}

func NewMockUploadSessionRepository() *MockUploadSessionRepository {
	return &MockUploadSessionRepository{}
}

func (m *MockUploadSessionRepository) Create(ctx context.Context, session domain.UploadSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) FindByToken(ctx context.Context, token uuid.UUID) (*domain.UploadSession, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(*domain.UploadSession), args.Error(1)
}

func (m *MockUploadSessionRepository) FindByTokenAndOwner(ctx context.Context, token uuid.UUID, owner string) (*domain.UploadSession, error) {
	args := m.Called(ctx, token, owner)
	return args.Get(0).(*domain.UploadSession), args.Error(1)
}

func (m *MockUploadSessionRepository) UpdateStatus(ctx context.Context, token uuid.UUID, from []domain.SessionStatus, to domain.SessionStatus) error {
	args := m.Called(ctx, token, from, to)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) Touch(ctx context.Context, token uuid.UUID, lastActivity, expiresAt time.Time) error {
	args := m.Called(ctx, token, lastActivity, expiresAt)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) RefreshCounters(ctx context.Context, token uuid.UUID) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) SetFinalLocation(ctx context.Context, token uuid.UUID, finalKey, finalURL string, completedAt time.Time) error {
	args := m.Called(ctx, token, finalKey, finalURL, completedAt)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) PromoteFinalLocation(ctx context.Context, token uuid.UUID, finalKey, finalURL string) error {
	args := m.Called(ctx, token, finalKey, finalURL)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) ListActive(ctx context.Context, owner string) ([]domain.UploadSession, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).([]domain.UploadSession), args.Error(1)
}

func (m *MockUploadSessionRepository) ExpireStale(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockUploadSessionRepository) Delete(ctx context.Context, token uuid.UUID) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockChunkRepository struct {
	mock.Mock
}

func NewMockChunkRepository() *MockChunkRepository {
	return &MockChunkRepository{}
}

func (m *MockChunkRepository) CreateBatch(ctx context.Context, chunks []domain.ChunkRecord) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockChunkRepository) FindBySession(ctx context.Context, token uuid.UUID) ([]domain.ChunkRecord, error) {
	args := m.Called(ctx, token)
	return args.Get(0).([]domain.ChunkRecord), args.Error(1)
}

func (m *MockChunkRepository) FindOne(ctx context.Context, token uuid.UUID, index int) (*domain.ChunkRecord, error) {
	args := m.Called(ctx, token, index)
	return args.Get(0).(*domain.ChunkRecord), args.Error(1)
}

func (m *MockChunkRepository) MarkUploaded(ctx context.Context, token uuid.UUID, index int, size int64, checksum string, uploadedAt time.Time) error {
	args := m.Called(ctx, token, index, size, checksum, uploadedAt)
	return args.Error(0)
}

func (m *MockChunkRepository) CountUploaded(ctx context.Context, token uuid.UUID) (int, int64, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockChunkRepository) CountPending(ctx context.Context, token uuid.UUID) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

func (m *MockChunkRepository) DeleteBySession(ctx context.Context, token uuid.UUID) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockMediaRecordRepository struct {
	mock.Mock
}

func NewMockMediaRecordRepository() *MockMediaRecordRepository {
	return &MockMediaRecordRepository{}
}

func (m *MockMediaRecordRepository) Create(ctx context.Context, record domain.MediaRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockMediaRecordRepository) FindBySessionToken(ctx context.Context, token uuid.UUID) (*domain.MediaRecord, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(*domain.MediaRecord), args.Error(1)
}

func (m *MockMediaRecordRepository) PromoteLocation(ctx context.Context, sessionToken uuid.UUID, storageKey, url string, sizeBytes int64) error {
	args := m.Called(ctx, sessionToken, storageKey, url, sizeBytes)
	return args.Error(0)
}

func (m *MockMediaRecordRepository) SetThumbnail(ctx context.Context, sessionToken uuid.UUID, thumbnailURL string) error {
	args := m.Called(ctx, sessionToken, thumbnailURL)
	return args.Error(0)
}

func (m *MockMediaRecordRepository) DeleteBySessionToken(ctx context.Context, token uuid.UUID) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockAssemblyJobRepository struct {
	mock.Mock
}

func NewMockAssemblyJobRepository() *MockAssemblyJobRepository {
	return &MockAssemblyJobRepository{}
}

func (m *MockAssemblyJobRepository) Enqueue(ctx context.Context, token uuid.UUID) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAssemblyJobRepository) Claim(ctx context.Context, token uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, token, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssemblyJobRepository) MarkDone(ctx context.Context, token uuid.UUID) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAssemblyJobRepository) MarkSkipped(ctx context.Context, token uuid.UUID) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAssemblyJobRepository) MarkFailed(ctx context.Context, token uuid.UUID, cause string) error {
	args := m.Called(ctx, token, cause)
	return args.Error(0)
}

func (m *MockAssemblyJobRepository) FindRecoverable(ctx context.Context, staleBefore time.Time) ([]domain.AssemblyJob, error) {
	args := m.Called(ctx, staleBefore)
	return args.Get(0).([]domain.AssemblyJob), args.Error(1)
}

type MockUnitOfWork struct {
	mock.Mock
	sessionRepo *MockUploadSessionRepository
	chunkRepo   *MockChunkRepository
	recordRepo  *MockMediaRecordRepository
	jobRepo     *MockAssemblyJobRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		sessionRepo: &MockUploadSessionRepository{},
		chunkRepo:   &MockChunkRepository{},
		recordRepo:  &MockMediaRecordRepository{},
		jobRepo:     &MockAssemblyJobRepository{},
	}
}

func (m *MockUnitOfWork) SessionRepo() port.UploadSessionRepository {
	return m.sessionRepo
}

func (m *MockUnitOfWork) ChunkRepo() port.ChunkRepository {
	return m.chunkRepo
}

func (m *MockUnitOfWork) RecordRepo() port.MediaRecordRepository {
	return m.recordRepo
}

func (m *MockUnitOfWork) JobRepo() port.AssemblyJobRepository {
	return m.jobRepo
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	args := m.Called(ctx, fn)

	if err := fn(m); err != nil {
		return err
	}

	return args.Error(0)
}

func (m *MockUnitOfWork) GetSessionRepoMock() *MockUploadSessionRepository {
	return m.sessionRepo
}

func (m *MockUnitOfWork) GetChunkRepoMock() *MockChunkRepository {
	return m.chunkRepo
}

func (m *MockUnitOfWork) GetRecordRepoMock() *MockMediaRecordRepository {
	return m.recordRepo
}

func (m *MockUnitOfWork) GetJobRepoMock() *MockAssemblyJobRepository {
	return m.jobRepo
}
