package upload

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"

	"github.com/google/uuid"
)

// V1SessionStatusResponse is the aggregated progress view of a session
type V1SessionStatusResponse struct {
	Token          uuid.UUID            `json:"token"`
	Status         domain.SessionStatus `json:"status"`
	TotalChunks    int                  `json:"total_chunks"`
	UploadedChunks int                  `json:"uploaded_chunks"`
	UploadedBytes  int64                `json:"uploaded_bytes"`
	TotalSize      int64                `json:"total_size"`
	Chunks         []domain.ChunkState  `json:"chunks"`
	Metadata       map[string]string    `json:"metadata,omitempty"`
	ExpiresAt      time.Time            `json:"expires_at"`
}

func (h *HandlerV1) GetSessionStatusV1(w http.ResponseWriter, r *http.Request) {
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

	progress, statusErr := h.sessionService.GetSessionStatus(r.Context(), ownerID, token)
	switch {
	case errors.Is(statusErr, domain.ErrSessionNotFound):
		http.Error(w, statusErr.Error(), http.StatusNotFound)
		return
	case errors.Is(statusErr, domain.ErrSessionExpired):
		http.Error(w, statusErr.Error(), http.StatusGone)
		return
	case statusErr != nil:
		h.logger.Error("error fetching session status", "error", statusErr)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	default:
		resp := V1SessionStatusResponse{
			Token:          progress.Token,
			Status:         progress.Status,
			TotalChunks:    progress.TotalChunks,
			UploadedChunks: progress.UploadedChunks,
			UploadedBytes:  progress.UploadedBytes,
			TotalSize:      progress.TotalSize,
			Chunks:         progress.Chunks,
			Metadata:       progress.Metadata,
			ExpiresAt:      progress.ExpiresAt,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}
