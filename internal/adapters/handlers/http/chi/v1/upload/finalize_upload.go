package upload

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
)

// V1FinalizeResponse is the outcome of a finalize call. A small file
// completes synchronously; a large one reports finalized with a streaming
// location while assembly continues in the background.
type V1FinalizeResponse struct {
	Completed  bool   `json:"completed"`
	Finalizing bool   `json:"finalizing"`
	FinalKey   string `json:"final_key,omitempty"`
	FinalURL   string `json:"final_url,omitempty"`
}

func (h *HandlerV1) FinalizeUploadV1(w http.ResponseWriter, r *http.Request) {
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

	result, finalizeErr := h.uploadService.FinalizeUpload(r.Context(), ownerID, token)
	switch {
	case errors.Is(finalizeErr, domain.ErrSessionNotFound):
		http.Error(w, finalizeErr.Error(), http.StatusNotFound)
		return
	case errors.Is(finalizeErr, domain.ErrSessionExpired):
		http.Error(w, finalizeErr.Error(), http.StatusGone)
		return
	case errors.Is(finalizeErr, domain.ErrChunksPending), errors.Is(finalizeErr, domain.ErrStateConflict):
		http.Error(w, finalizeErr.Error(), http.StatusConflict)
		return
	case errors.Is(finalizeErr, domain.ErrStorageUnavailable):
		h.logger.Error("storage unavailable for finalize", "error", finalizeErr)
		http.Error(w, finalizeErr.Error(), http.StatusServiceUnavailable)
		return
	case finalizeErr != nil:
		h.logger.Error("error finalizing upload", "error", finalizeErr)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	default:
		resp := V1FinalizeResponse{
			Completed:  result.Completed,
			Finalizing: result.Finalizing,
			FinalKey:   result.FinalKey,
			FinalURL:   result.FinalURL,
		}
		status := http.StatusOK
		if result.Finalizing {
			status = http.StatusAccepted
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}
