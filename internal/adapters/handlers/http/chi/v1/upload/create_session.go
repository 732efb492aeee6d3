package upload

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"

	"github.com/google/uuid"
)

// V1CreateSessionRequest is the request to open a new upload session
type V1CreateSessionRequest struct {
	FileName  string            `json:"filename"`
	MimeType  string            `json:"mime_type"`
	TotalSize int64             `json:"total_size"`
	ChunkSize int64             `json:"chunk_size,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// V1CreateSessionResponse is the response to open a new upload session
type V1CreateSessionResponse struct {
	Token       uuid.UUID `json:"token"`
	ChunkSize   int64     `json:"chunk_size"`
	TotalChunks int       `json:"total_chunks"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *HandlerV1) CreateSessionV1(w http.ResponseWriter, r *http.Request) {
	ownerID := owner(r)
	if ownerID == "" {
		http.Error(w, "missing owner header", http.StatusUnauthorized)
		return
	}

	var req V1CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding create session request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.FileName == "" || req.MimeType == "" {
		http.Error(w, "missing param", http.StatusBadRequest)
		return
	}

	result, createErr := h.sessionService.CreateSession(r.Context(), ownerID, domain.CreateSessionInput{
		Filename:  req.FileName,
		MimeType:  req.MimeType,
		TotalSize: req.TotalSize,
		ChunkSize: req.ChunkSize,
		Metadata:  req.Metadata,
	})
	switch {
	case errors.Is(createErr, domain.ErrInvalidSize), errors.Is(createErr, domain.ErrInvalidMediaType):
		h.logger.Error("invalid create session request", "error", createErr)
		http.Error(w, createErr.Error(), http.StatusBadRequest)
		return
	case createErr != nil:
		h.logger.Error("error creating session", "error", createErr)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	default:
		resp := V1CreateSessionResponse{
			Token:       result.Token,
			ChunkSize:   result.ChunkSize,
			TotalChunks: result.TotalChunks,
			ExpiresAt:   result.ExpiresAt,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}
