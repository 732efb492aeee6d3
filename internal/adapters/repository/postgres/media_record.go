package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
)

type sqlMediaRecordRepository struct {
	db SQLQuerier
}

// NewSQLMediaRecordRepository creates a new sqlMediaRecordRepository
func NewSQLMediaRecordRepository(db SQLQuerier) port.MediaRecordRepository {
	return &sqlMediaRecordRepository{db: db}
}

// Create creates a media record
func (s *sqlMediaRecordRepository) Create(ctx context.Context, record domain.MediaRecord) error {
	query := `
		INSERT INTO media_record (
			id, owner_id, category, filename, mime_type, size_bytes,
			storage_key, url, session_token
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.Owner,
		record.Category,
		record.Filename,
		record.MimeType,
		record.SizeBytes,
		record.StorageKey,
		record.URL,
		record.SessionToken,
	)
	if err != nil {
		return err
	}
	return nil
}

func (s *sqlMediaRecordRepository) FindBySessionToken(ctx context.Context, token uuid.UUID) (*domain.MediaRecord, error) {
	query := `
		SELECT id, owner_id, category, filename, mime_type, size_bytes,
			storage_key, url, thumbnail_url, session_token, created_at, updated_at
		FROM media_record
		WHERE session_token = $1`

	var row dbMediaRecord
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&row.ID,
		&row.Owner,
		&row.Category,
		&row.Filename,
		&row.MimeType,
		&row.SizeBytes,
		&row.StorageKey,
		&row.URL,
		&row.ThumbnailURL,
		&row.SessionToken,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return row.ToDomain(), nil
}

// PromoteLocation swaps the streaming locator for the durable object location.
// Rows that already point at a durable object do not match, so the swap
// happens at most once.
func (s *sqlMediaRecordRepository) PromoteLocation(ctx context.Context, sessionToken uuid.UUID, storageKey, url string, sizeBytes int64) error {
	query := `
		UPDATE media_record
		SET storage_key = $1, url = $2, size_bytes = $3, updated_at = now()
		WHERE session_token = $4 AND storage_key LIKE $5`

	result, err := s.db.ExecContext(ctx, query, storageKey, url, sizeBytes, sessionToken, domain.StreamKeyPrefix+"%")
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrStateConflict
	}

	return nil
}

func (s *sqlMediaRecordRepository) SetThumbnail(ctx context.Context, sessionToken uuid.UUID, thumbnailURL string) error {
	query := `UPDATE media_record SET thumbnail_url = $1, updated_at = now() WHERE session_token = $2`

	result, err := s.db.ExecContext(ctx, query, thumbnailURL, sessionToken)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (s *sqlMediaRecordRepository) DeleteBySessionToken(ctx context.Context, token uuid.UUID) error {
	query := `DELETE FROM media_record WHERE session_token = $1`

	_, err := s.db.ExecContext(ctx, query, token)
	return err
}

type dbMediaRecord struct {
	ID           uuid.UUID
	Owner        string
	Category     string
	Filename     string
	MimeType     string
	SizeBytes    int64
	StorageKey   string
	URL          string
	ThumbnailURL sql.NullString
	SessionToken uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ToDomain converts db obj to domain
func (r *dbMediaRecord) ToDomain() *domain.MediaRecord {
	record := &domain.MediaRecord{
		ID:           r.ID,
		Owner:        r.Owner,
		Category:     domain.MediaCategory(r.Category),
		Filename:     r.Filename,
		MimeType:     r.MimeType,
		SizeBytes:    r.SizeBytes,
		StorageKey:   r.StorageKey,
		URL:          r.URL,
		SessionToken: r.SessionToken,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.ThumbnailURL.Valid {
		record.ThumbnailURL = &r.ThumbnailURL.String
	}
	return record
}
