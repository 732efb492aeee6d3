package upload

import (
	"log/slog"
	"net/http"

	"github.com/aalapcshah/Klipz-sub005/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OwnerHeader carries the owner identity injected by the upstream auth layer
const OwnerHeader = "X-Owner-ID"

// HandlerV1 is the handler for v1 upload routes
type HandlerV1 struct {
	sessionService port.SessionService
	uploadService  port.UploadService
	cleanupService port.CleanupService
	logger         *slog.Logger
}

// NewUploadHandlerV1 creates HandlerV1
func NewUploadHandlerV1(
	sessionService port.SessionService,
	uploadService port.UploadService,
	cleanupService port.CleanupService,
	logger *slog.Logger,
) *HandlerV1 {
	return &HandlerV1{
		sessionService: sessionService,
		uploadService:  uploadService,
		cleanupService: cleanupService,
		logger:         logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/session", h.CreateSessionV1)
	router.Get("/sessions", h.ListActiveSessionsV1)
	router.Get("/session/{token}", h.GetSessionStatusV1)
	router.Put("/session/{token}/chunk/{index}", h.UploadChunkV1)
	router.Post("/session/{token}/finalize", h.FinalizeUploadV1)
	router.Get("/session/{token}/finalize", h.GetFinalizeStatusV1)
	router.Post("/session/{token}/pause", h.PauseSessionV1)
	router.Delete("/session/{token}", h.CancelSessionV1)
	router.Post("/cleanup", h.CleanupV1)

	return router
}

// owner extracts the owner identity from the request headers
func owner(r *http.Request) string {
	return r.Header.Get(OwnerHeader)
}

// pathToken parses the session token from the URL
func pathToken(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "token"))
}
