package stream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// HandlerV1 is the handler for v1 stream routes
type HandlerV1 struct {
	streamService port.StreamService
	logger        *slog.Logger
}

// NewStreamHandlerV1 creates HandlerV1
func NewStreamHandlerV1(service port.StreamService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		streamService: service,
		logger:        logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{token}", h.StreamV1)

	return router
}

// StreamV1 serves the bytes of a finalized session. Durable objects are
// served by redirect to a presigned URL; not-yet-assembled files are replayed
// chunk by chunk.
func (h *HandlerV1) StreamV1(w http.ResponseWriter, r *http.Request) {
	token, err := uuid.Parse(chi.URLParam(r, "token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusBadRequest)
		return
	}

	source, openErr := h.streamService.Open(r.Context(), token)
	switch {
	case errors.Is(openErr, domain.ErrSessionNotFound):
		http.Error(w, openErr.Error(), http.StatusNotFound)
		return
	case errors.Is(openErr, domain.ErrStreamNotReady):
		http.Error(w, openErr.Error(), http.StatusConflict)
		return
	case errors.Is(openErr, domain.ErrStorageUnavailable):
		h.logger.Error("storage unavailable for stream", "error", openErr)
		http.Error(w, openErr.Error(), http.StatusServiceUnavailable)
		return
	case openErr != nil:
		h.logger.Error("error opening stream", "error", openErr)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if source.RedirectURL != "" {
		http.Redirect(w, r, source.RedirectURL, http.StatusFound)
		return
	}

	defer source.Body.Close()

	w.Header().Set("Content-Type", source.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(source.TotalSize, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", source.Filename))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, source.Body); err != nil {
		// the response is already committed; nothing left but to log
		h.logger.Warn("stream interrupted", "token", token, "error", err)
	}
}
