package upload_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	http2 "net/http"
	"net/http/httptest"
	"testing"

	"github.com/aalapcshah/Klipz-sub005/internal/adapters/handlers/http/chi"
	upload2 "github.com/aalapcshah/Klipz-sub005/internal/adapters/handlers/http/chi/v1/upload"
	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/service/upload"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUploadChunkV1(t *testing.T) {
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("success", func(t *testing.T) {
		// Arrange
		token := uuid.New()
		payload := []byte("chunk-bytes")

		mockService := upload.NewMockService()
		mockService.On("UploadChunk", mock.Anything, "owner-1", token, 2, payload, "abc123").
			Return(&domain.ChunkProgress{
				UploadedChunks:   3,
				TotalChunks:      5,
				UploadedBytes:    3072,
				ChecksumVerified: true,
			}, nil)

		handler := upload2.NewUploadHandlerV1(mockService, mockService, nil, discardLogger)
		h := chi.NewRouter(discardLogger, handler, nil, "", testMaxBody)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPut,
			"/api/v1/upload/session/"+token.String()+"/chunk/2", bytes.NewReader(payload))
		req.Header.Set(upload2.OwnerHeader, "owner-1")
		req.Header.Set(upload2.ChecksumHeader, "abc123")

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusOK, w.Code)

		var response upload2.V1ChunkProgressResponse
		err := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, 3, response.UploadedChunks)
		assert.True(t, response.ChecksumVerified)
		mockService.AssertExpectations(t)
	})

	t.Run("error - checksum mismatch", func(t *testing.T) {
		// Arrange
		token := uuid.New()

		mockService := upload.NewMockService()
		mockService.On("UploadChunk", mock.Anything, "owner-1", token, 0, mock.Anything, mock.Anything).
			Return(nil, domain.ErrMismatchChecksum)

		handler := upload2.NewUploadHandlerV1(mockService, mockService, nil, discardLogger)
		h := chi.NewRouter(discardLogger, handler, nil, "", testMaxBody)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPut,
			"/api/v1/upload/session/"+token.String()+"/chunk/0", bytes.NewReader([]byte("x")))
		req.Header.Set(upload2.OwnerHeader, "owner-1")
		req.Header.Set(upload2.ChecksumHeader, "wrong")

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusUnprocessableEntity, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("error - session expired", func(t *testing.T) {
		// Arrange
		token := uuid.New()

		mockService := upload.NewMockService()
		mockService.On("UploadChunk", mock.Anything, "owner-1", token, 0, mock.Anything, mock.Anything).
			Return(nil, domain.ErrSessionExpired)

		handler := upload2.NewUploadHandlerV1(mockService, mockService, nil, discardLogger)
		h := chi.NewRouter(discardLogger, handler, nil, "", testMaxBody)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPut,
			"/api/v1/upload/session/"+token.String()+"/chunk/0", bytes.NewReader([]byte("x")))
		req.Header.Set(upload2.OwnerHeader, "owner-1")

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusGone, w.Code)
	})

	t.Run("error - invalid index", func(t *testing.T) {
		// Arrange
		token := uuid.New()
		mockService := upload.NewMockService()
		handler := upload2.NewUploadHandlerV1(mockService, mockService, nil, discardLogger)
		h := chi.NewRouter(discardLogger, handler, nil, "", testMaxBody)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPut,
			"/api/v1/upload/session/"+token.String()+"/chunk/notanumber", bytes.NewReader([]byte("x")))
		req.Header.Set(upload2.OwnerHeader, "owner-1")

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusBadRequest, w.Code)
	})

	t.Run("error - empty body", func(t *testing.T) {
		// Arrange
		token := uuid.New()
		mockService := upload.NewMockService()
		handler := upload2.NewUploadHandlerV1(mockService, mockService, nil, discardLogger)
		h := chi.NewRouter(discardLogger, handler, nil, "", testMaxBody)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPut,
			"/api/v1/upload/session/"+token.String()+"/chunk/0", bytes.NewReader(nil))
		req.Header.Set(upload2.OwnerHeader, "owner-1")

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusBadRequest, w.Code)
	})

	t.Run("error - storage unavailable", func(t *testing.T) {
		// Arrange
		token := uuid.New()

		mockService := upload.NewMockService()
		mockService.On("UploadChunk", mock.Anything, "owner-1", token, 0, mock.Anything, mock.Anything).
			Return(nil, domain.ErrStorageUnavailable)

		handler := upload2.NewUploadHandlerV1(mockService, mockService, nil, discardLogger)
		h := chi.NewRouter(discardLogger, handler, nil, "", testMaxBody)
		w := httptest.NewRecorder()

		req := httptest.NewRequest(http2.MethodPut,
			"/api/v1/upload/session/"+token.String()+"/chunk/0", bytes.NewReader([]byte("x")))
		req.Header.Set(upload2.OwnerHeader, "owner-1")

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusServiceUnavailable, w.Code)
	})
}
