package upload

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
)

// AllowedMediaMimeTypes is a whitelist of supported media MIME types and their extensions.
// This is deterministic and does NOT rely on OS mime databases (Docker-safe).
var AllowedMediaMimeTypes = map[string][]string{
	// Images
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
	"image/gif":  {".gif"},
	"image/bmp":  {".bmp"},
	"image/tiff": {".tif", ".tiff"},
	"image/heic": {".heic"},
	"image/heif": {".heif"},

	// Videos
	"video/mp4":        {".mp4"},
	"video/webm":       {".webm"},
	"video/quicktime":  {".mov"},
	"video/x-msvideo":  {".avi"},
	"video/x-matroska": {".mkv"},
	"video/ogg":        {".ogv"},
	"video/3gpp":       {".3gp"},
}

// CreateSession opens a new upload session and pre-creates every chunk
// placeholder, so progress is always a single count query away.
func (s *Service) CreateSession(ctx context.Context, owner string, in domain.CreateSessionInput) (*domain.CreateSessionResult, error) {
	if in.TotalSize <= 0 {
		return nil, fmt.Errorf("%w: total size must be positive, got %d", domain.ErrInvalidSize, in.TotalSize)
	}
	if in.TotalSize > s.uploadCfg.MaxFileSize {
		return nil, fmt.Errorf("%w: total size %d exceeds maximum %d", domain.ErrInvalidSize, in.TotalSize, s.uploadCfg.MaxFileSize)
	}

	category, mimeType, err := validateMediaFile(in.Filename, in.MimeType)
	if err != nil {
		return nil, err
	}

	chunkSize := in.ChunkSize
	if chunkSize <= 0 {
		chunkSize = s.uploadCfg.DefaultChunkSize
	}
	if chunkSize < s.uploadCfg.MinChunkSize {
		chunkSize = s.uploadCfg.MinChunkSize
	}
	if chunkSize > s.uploadCfg.MaxChunkSize {
		chunkSize = s.uploadCfg.MaxChunkSize
	}

	totalChunks := int((in.TotalSize + chunkSize - 1) / chunkSize)

	token := uuid.New()
	now := time.Now()
	expiresAt := now.Add(s.uploadCfg.SessionTTL)

	session := domain.UploadSession{
		Token:       token,
		Owner:       owner,
		Filename:    in.Filename,
		MimeType:    mimeType,
		Category:    category,
		TotalSize:   in.TotalSize,
		ChunkSize:   chunkSize,
		TotalChunks: totalChunks,
		Status:      domain.SessionStatusActive,
		Metadata:    in.Metadata,
		ExpiresAt:   expiresAt,
	}

	chunks := make([]domain.ChunkRecord, 0, totalChunks)
	for i := 0; i < totalChunks; i++ {
		chunks = append(chunks, domain.ChunkRecord{
			SessionToken: token,
			Index:        i,
			StorageKey:   domain.ChunkStorageKey(token, i),
			Status:       domain.ChunkStatusPending,
		})
	}

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.SessionRepo().Create(ctx, session); err != nil {
			return err
		}
		return uow.ChunkRepo().CreateBatch(ctx, chunks)
	})
	if txErr != nil {
		return nil, txErr
	}

	return &domain.CreateSessionResult{
		Token:       token,
		ChunkSize:   chunkSize,
		TotalChunks: totalChunks,
		ExpiresAt:   expiresAt,
	}, nil
}

func validateMediaFile(filename string, contentType string) (domain.MediaCategory, string, error) {
	mimeType := extractMimeType(contentType)
	if mimeType == "" {
		return domain.MediaCategoryUnknown, "", fmt.Errorf("%w: invalid content type %q", domain.ErrInvalidMediaType, contentType)
	}

	allowedExts, ok := AllowedMediaMimeTypes[mimeType]
	if !ok {
		return domain.MediaCategoryUnknown, "", fmt.Errorf("%w: unsupported MIME type %s", domain.ErrInvalidMediaType, mimeType)
	}

	category := domain.CategoryFromMime(mimeType)
	if category == domain.MediaCategoryUnknown {
		return domain.MediaCategoryUnknown, "", fmt.Errorf("%w: file must be an image or video, got %s", domain.ErrInvalidMediaType, mimeType)
	}

	if err := validateExtension(filename, allowedExts); err != nil {
		return domain.MediaCategoryUnknown, "", err
	}

	return category, mimeType, nil
}

func validateExtension(filename string, allowedExts []string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return fmt.Errorf("%w: no file extension found", domain.ErrInvalidMediaType)
	}

	for _, allowed := range allowedExts {
		if ext == allowed {
			return nil
		}
	}

	return fmt.Errorf("%w: extension %s is not allowed (expected one of %v)", domain.ErrInvalidMediaType, ext, allowedExts)
}

func extractMimeType(contentType string) string {
	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mimeType
}
