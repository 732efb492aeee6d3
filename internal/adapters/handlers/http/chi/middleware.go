package chi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/adapters/handlers/http/chi/v1/upload"
	"github.com/go-chi/chi/v5/middleware"
)

// LoggerMiddleware logs every request with its id and the owner the request
// is scoped to. Health probes are skipped to keep the log readable.
func LoggerMiddleware(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				if r.URL.Path == "/health" {
					return
				}
				l.Info("http_request",
					"request_id", middleware.GetReqID(r.Context()),
					"owner", r.Header.Get(upload.OwnerHeader),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
