package upload

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
)

// V1FinalizeStatusResponse is the poll-for-status view of a finalize attempt
type V1FinalizeStatusResponse struct {
	State    domain.FinalizeState `json:"state"`
	FinalKey string               `json:"final_key,omitempty"`
	FinalURL string               `json:"final_url,omitempty"`
	Message  string               `json:"message,omitempty"`
}

func (h *HandlerV1) GetFinalizeStatusV1(w http.ResponseWriter, r *http.Request) {
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

	status, statusErr := h.uploadService.GetFinalizeStatus(r.Context(), ownerID, token)
	switch {
	case errors.Is(statusErr, domain.ErrSessionNotFound):
		http.Error(w, statusErr.Error(), http.StatusNotFound)
		return
	case errors.Is(statusErr, domain.ErrSessionExpired):
		http.Error(w, statusErr.Error(), http.StatusGone)
		return
	case errors.Is(statusErr, domain.ErrStateConflict):
		http.Error(w, statusErr.Error(), http.StatusConflict)
		return
	case statusErr != nil:
		h.logger.Error("error fetching finalize status", "error", statusErr)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	default:
		resp := V1FinalizeStatusResponse{
			State:    status.State,
			FinalKey: status.FinalKey,
			FinalURL: status.FinalURL,
			Message:  status.Message,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}
