package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaCategory represents the kind of media a session carries
type MediaCategory string

const (
	MediaCategoryImage   MediaCategory = "image"
	MediaCategoryVideo   MediaCategory = "video"
	MediaCategoryUnknown MediaCategory = "unknown"
)

// CategoryFromMime derives the media category from a MIME type
func CategoryFromMime(mimeType string) MediaCategory {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return MediaCategoryImage
	case strings.HasPrefix(mimeType, "video/"):
		return MediaCategoryVideo
	default:
		return MediaCategoryUnknown
	}
}

// DurableObjectKey builds a collision-free storage key for a consolidated
// object, namespaced by owner and category and keeping the source extension.
func DurableObjectKey(owner string, category MediaCategory, filename string) string {
	suffix := uuid.NewString()[:8]
	ext := filepath.Ext(filename)
	return fmt.Sprintf("media/%s/%s/%d-%s%s", owner, category, time.Now().Unix(), suffix, ext)
}

// MediaRecord is the owning domain record for a finished upload. Its URL
// starts as the streaming locator and is swapped exactly once to the durable
// object URL by the background assembler.
type MediaRecord struct {
	ID           uuid.UUID
	Owner        string
	Category     MediaCategory
	Filename     string
	MimeType     string
	SizeBytes    int64
	StorageKey   string
	URL          string
	ThumbnailURL *string
	SessionToken uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
