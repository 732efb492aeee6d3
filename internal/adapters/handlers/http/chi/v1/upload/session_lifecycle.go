package upload

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"

	"github.com/google/uuid"
)

func (h *HandlerV1) PauseSessionV1(w http.ResponseWriter, r *http.Request) {
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

	pauseErr := h.sessionService.PauseSession(r.Context(), ownerID, token)
	switch {
	case errors.Is(pauseErr, domain.ErrSessionNotFound):
		http.Error(w, pauseErr.Error(), http.StatusNotFound)
	case errors.Is(pauseErr, domain.ErrSessionExpired):
		http.Error(w, pauseErr.Error(), http.StatusGone)
	case errors.Is(pauseErr, domain.ErrStateConflict):
		http.Error(w, pauseErr.Error(), http.StatusConflict)
	case pauseErr != nil:
		h.logger.Error("error pausing session", "error", pauseErr)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *HandlerV1) CancelSessionV1(w http.ResponseWriter, r *http.Request) {
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

	cancelErr := h.sessionService.CancelSession(r.Context(), ownerID, token)
	switch {
	case errors.Is(cancelErr, domain.ErrSessionNotFound):
		http.Error(w, cancelErr.Error(), http.StatusNotFound)
	case errors.Is(cancelErr, domain.ErrStateConflict):
		http.Error(w, cancelErr.Error(), http.StatusConflict)
	case cancelErr != nil:
		h.logger.Error("error cancelling session", "error", cancelErr)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// V1SessionSummary is one resumable session in the list view
type V1SessionSummary struct {
	Token          uuid.UUID            `json:"token"`
	Filename       string               `json:"filename"`
	Status         domain.SessionStatus `json:"status"`
	TotalSize      int64                `json:"total_size"`
	TotalChunks    int                  `json:"total_chunks"`
	UploadedChunks int                  `json:"uploaded_chunks"`
	ExpiresAt      time.Time            `json:"expires_at"`
}

// V1ListSessionsResponse lists the owner's resumable sessions
type V1ListSessionsResponse struct {
	Sessions []V1SessionSummary `json:"sessions"`
}

func (h *HandlerV1) ListActiveSessionsV1(w http.ResponseWriter, r *http.Request) {
	ownerID := owner(r)
	if ownerID == "" {
		http.Error(w, "missing owner header", http.StatusUnauthorized)
		return
	}

	sessions, listErr := h.sessionService.ListActiveSessions(r.Context(), ownerID)
	if listErr != nil {
		h.logger.Error("error listing sessions", "error", listErr)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := V1ListSessionsResponse{Sessions: make([]V1SessionSummary, 0, len(sessions))}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, V1SessionSummary{
			Token:          s.Token,
			Filename:       s.Filename,
			Status:         s.Status,
			TotalSize:      s.TotalSize,
			TotalChunks:    s.TotalChunks,
			UploadedChunks: s.UploadedChunks,
			ExpiresAt:      s.ExpiresAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}

// V1CleanupResponse reports how many sessions the sweep expired
type V1CleanupResponse struct {
	Expired int64 `json:"expired"`
}

func (h *HandlerV1) CleanupV1(w http.ResponseWriter, r *http.Request) {
	count, cleanupErr := h.cleanupService.CleanupExpiredSessions(r.Context(), time.Now())
	if cleanupErr != nil {
		h.logger.Error("error running cleanup", "error", cleanupErr)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(V1CleanupResponse{Expired: count}); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
