package port

import "context"

// ThumbnailGenerator asks an external service for a thumbnail of the given
// media URL. Failures are logged and ignored by callers; thumbnailing is not
// required for correctness.
type ThumbnailGenerator interface {
	Generate(ctx context.Context, sourceURL string) (string, error)
}
