package chi_test

import (
	"bytes"
	"log/slog"
	http2 "net/http"
	"net/http/httptest"
	"testing"

	"github.com/aalapcshah/Klipz-sub005/internal/adapters/handlers/http/chi"
	"github.com/aalapcshah/Klipz-sub005/internal/adapters/handlers/http/chi/v1/upload"

	"github.com/stretchr/testify/assert"
)

func TestLoggerMiddleware(t *testing.T) {

	newHandler := func(buf *bytes.Buffer) http2.Handler {
		logger := slog.New(slog.NewTextHandler(buf, nil))
		return chi.LoggerMiddleware(logger)(http2.HandlerFunc(func(w http2.ResponseWriter, r *http2.Request) {
			w.WriteHeader(http2.StatusNoContent)
		}))
	}

	t.Run("logs method, path, status and owner", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer
		h := newHandler(&buf)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http2.MethodGet, "/api/v1/upload/sessions", nil)
		req.Header.Set(upload.OwnerHeader, "owner-1")

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusNoContent, w.Code)
		logged := buf.String()
		assert.Contains(t, logged, "http_request")
		assert.Contains(t, logged, "owner=owner-1")
		assert.Contains(t, logged, "path=/api/v1/upload/sessions")
		assert.Contains(t, logged, "status=204")
	})

	t.Run("skips health probes", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer
		h := newHandler(&buf)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http2.MethodGet, "/health", nil)

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Empty(t, buf.String())
	})
}
