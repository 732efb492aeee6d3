package upload

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"

	"github.com/go-chi/chi/v5"
)

// ChecksumHeader optionally carries the hex sha256 of the chunk body
const ChecksumHeader = "X-Chunk-Checksum"

// V1ChunkProgressResponse is returned after each accepted chunk
type V1ChunkProgressResponse struct {
	UploadedChunks   int   `json:"uploaded_chunks"`
	TotalChunks      int   `json:"total_chunks"`
	UploadedBytes    int64 `json:"uploaded_bytes"`
	ChecksumVerified bool  `json:"checksum_verified"`
}

func (h *HandlerV1) UploadChunkV1(w http.ResponseWriter, r *http.Request) {
	ownerID := owner(r)
	if ownerID == "" {
		http.Error(w, "missing owner header", http.StatusUnauthorized)
		return
	}

	token, err := pathToken(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusBadRequest)
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		http.Error(w, "invalid chunk index", http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("error reading chunk body", "error", err)
		http.Error(w, "error reading body", http.StatusBadRequest)
		return
	}
	if len(payload) == 0 {
		http.Error(w, "empty chunk body", http.StatusBadRequest)
		return
	}

	checksum := r.Header.Get(ChecksumHeader)

	progress, uploadErr := h.uploadService.UploadChunk(r.Context(), ownerID, token, index, payload, checksum)
	switch {
	case errors.Is(uploadErr, domain.ErrSessionNotFound), errors.Is(uploadErr, domain.ErrChunkNotFound):
		http.Error(w, uploadErr.Error(), http.StatusNotFound)
		return
	case errors.Is(uploadErr, domain.ErrSessionExpired):
		http.Error(w, uploadErr.Error(), http.StatusGone)
		return
	case errors.Is(uploadErr, domain.ErrStateConflict):
		http.Error(w, uploadErr.Error(), http.StatusConflict)
		return
	case errors.Is(uploadErr, domain.ErrMismatchChecksum):
		http.Error(w, uploadErr.Error(), http.StatusUnprocessableEntity)
		return
	case errors.Is(uploadErr, domain.ErrStorageUnavailable):
		h.logger.Error("storage unavailable for chunk upload", "error", uploadErr)
		http.Error(w, uploadErr.Error(), http.StatusServiceUnavailable)
		return
	case uploadErr != nil:
		h.logger.Error("error uploading chunk", "error", uploadErr)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	default:
		resp := V1ChunkProgressResponse{
			UploadedChunks:   progress.UploadedChunks,
			TotalChunks:      progress.TotalChunks,
			UploadedBytes:    progress.UploadedBytes,
			ChecksumVerified: progress.ChecksumVerified,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}
