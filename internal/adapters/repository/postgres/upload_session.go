package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const sessionColumns = `token, owner_id, filename, mime_type, category, total_size, chunk_size,
		total_chunks, status, uploaded_chunks, uploaded_bytes, metadata, final_key, final_url,
		created_at, last_activity_at, expires_at, completed_at`

type sqlUploadSessionRepository struct {
	db SQLQuerier
}

// NewSQLUploadSessionRepository creates a new sqlUploadSessionRepository
func NewSQLUploadSessionRepository(db SQLQuerier) port.UploadSessionRepository {
	return &sqlUploadSessionRepository{db: db}
}

// Create creates an upload session
func (s *sqlUploadSessionRepository) Create(ctx context.Context, session domain.UploadSession) error {
	metadata, err := json.Marshal(session.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal session metadata: %w", err)
	}

	query := `
		INSERT INTO upload_session (
			token, owner_id, filename, mime_type, category, total_size, chunk_size,
			total_chunks, status, metadata, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = s.db.ExecContext(
		ctx,
		query,
		session.Token,
		session.Owner,
		session.Filename,
		session.MimeType,
		session.Category,
		session.TotalSize,
		session.ChunkSize,
		session.TotalChunks,
		session.Status,
		metadata,
		session.ExpiresAt,
	)
	if err != nil {
		return err
	}
	return nil
}

func (s *sqlUploadSessionRepository) FindByToken(ctx context.Context, token uuid.UUID) (*domain.UploadSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM upload_session WHERE token = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, token))
}

func (s *sqlUploadSessionRepository) FindByTokenAndOwner(ctx context.Context, token uuid.UUID, owner string) (*domain.UploadSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM upload_session WHERE token = $1 AND owner_id = $2`
	return s.scanOne(s.db.QueryRowContext(ctx, query, token, owner))
}

// UpdateStatus transitions status only if the current status is one of the
// expected ones. A row that moved underneath reports domain.ErrStateConflict.
func (s *sqlUploadSessionRepository) UpdateStatus(ctx context.Context, token uuid.UUID, from []domain.SessionStatus, to domain.SessionStatus) error {
	expected := make([]string, 0, len(from))
	for _, st := range from {
		expected = append(expected, string(st))
	}

	query := `
		UPDATE upload_session
		SET status = $1, last_activity_at = now()
		WHERE token = $2 AND status = ANY($3)`

	result, err := s.db.ExecContext(ctx, query, to, token, pq.Array(expected))
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

// Touch slides the activity and expiry timestamps forward
func (s *sqlUploadSessionRepository) Touch(ctx context.Context, token uuid.UUID, lastActivity, expiresAt time.Time) error {
	query := `UPDATE upload_session SET last_activity_at = $1, expires_at = $2 WHERE token = $3`

	result, err := s.db.ExecContext(ctx, query, lastActivity, expiresAt, token)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// RefreshCounters recomputes the progress counters from chunk state
func (s *sqlUploadSessionRepository) RefreshCounters(ctx context.Context, token uuid.UUID) error {
	query := `
		UPDATE upload_session SET
			uploaded_chunks = (
				SELECT count(*) FROM upload_chunk
				WHERE session_token = $1 AND status IN ('uploaded', 'verified')
			),
			uploaded_bytes = (
				SELECT coalesce(sum(size), 0) FROM upload_chunk
				WHERE session_token = $1 AND status IN ('uploaded', 'verified')
			)
		WHERE token = $1`

	result, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// SetFinalLocation records the final location and completion time
func (s *sqlUploadSessionRepository) SetFinalLocation(ctx context.Context, token uuid.UUID, finalKey, finalURL string, completedAt time.Time) error {
	query := `
		UPDATE upload_session
		SET final_key = $1, final_url = $2, completed_at = $3, last_activity_at = now()
		WHERE token = $4`

	result, err := s.db.ExecContext(ctx, query, finalKey, finalURL, completedAt, token)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// PromoteFinalLocation swaps the streaming locator for the durable location.
// Only rows still carrying the stream prefix match, so the transition happens
// exactly once.
func (s *sqlUploadSessionRepository) PromoteFinalLocation(ctx context.Context, token uuid.UUID, finalKey, finalURL string) error {
	query := `
		UPDATE upload_session
		SET final_key = $1, final_url = $2
		WHERE token = $3 AND final_key LIKE $4`

	result, err := s.db.ExecContext(ctx, query, finalKey, finalURL, token, domain.StreamKeyPrefix+"%")
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

func (s *sqlUploadSessionRepository) ListActive(ctx context.Context, owner string) ([]domain.UploadSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM upload_session
		WHERE owner_id = $1 AND status IN ('active', 'paused', 'finalizing')
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.UploadSession
	for rows.Next() {
		session, scanErr := s.scanRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// ExpireStale marks every active or paused session past its expiry
func (s *sqlUploadSessionRepository) ExpireStale(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE upload_session
		SET status = 'expired'
		WHERE status IN ('active', 'paused') AND expires_at < $1
		RETURNING token`

	rows, err := s.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []uuid.UUID
	for rows.Next() {
		var token uuid.UUID
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tokens, nil
}

// Delete removes the session; chunk rows cascade
func (s *sqlUploadSessionRepository) Delete(ctx context.Context, token uuid.UUID) error {
	query := `DELETE FROM upload_session WHERE token = $1`

	result, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *sqlUploadSessionRepository) scanOne(row *sql.Row) (*domain.UploadSession, error) {
	session, err := s.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *sqlUploadSessionRepository) scanRow(row rowScanner) (*domain.UploadSession, error) {
	var dbRow dbUploadSession
	err := row.Scan(
		&dbRow.Token,
		&dbRow.Owner,
		&dbRow.Filename,
		&dbRow.MimeType,
		&dbRow.Category,
		&dbRow.TotalSize,
		&dbRow.ChunkSize,
		&dbRow.TotalChunks,
		&dbRow.Status,
		&dbRow.UploadedChunks,
		&dbRow.UploadedBytes,
		&dbRow.Metadata,
		&dbRow.FinalKey,
		&dbRow.FinalURL,
		&dbRow.CreatedAt,
		&dbRow.LastActivityAt,
		&dbRow.ExpiresAt,
		&dbRow.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return dbRow.ToDomain()
}

type dbUploadSession struct {
	Token          uuid.UUID
	Owner          string
	Filename       string
	MimeType       string
	Category       string
	TotalSize      int64
	ChunkSize      int64
	TotalChunks    int
	Status         string
	UploadedChunks int
	UploadedBytes  int64
	Metadata       []byte
	FinalKey       sql.NullString
	FinalURL       sql.NullString
	CreatedAt      time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
	CompletedAt    sql.NullTime
}

// ToDomain converts db obj to domain
func (s *dbUploadSession) ToDomain() (*domain.UploadSession, error) {
	var metadata map[string]string
	if len(s.Metadata) > 0 {
		if err := json.Unmarshal(s.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session metadata: %w", err)
		}
	}

	session := &domain.UploadSession{
		Token:          s.Token,
		Owner:          s.Owner,
		Filename:       s.Filename,
		MimeType:       s.MimeType,
		Category:       domain.MediaCategory(s.Category),
		TotalSize:      s.TotalSize,
		ChunkSize:      s.ChunkSize,
		TotalChunks:    s.TotalChunks,
		Status:         domain.SessionStatus(s.Status),
		UploadedChunks: s.UploadedChunks,
		UploadedBytes:  s.UploadedBytes,
		Metadata:       metadata,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		ExpiresAt:      s.ExpiresAt,
	}
	if s.FinalKey.Valid {
		session.FinalKey = &s.FinalKey.String
	}
	if s.FinalURL.Valid {
		session.FinalURL = &s.FinalURL.String
	}
	if s.CompletedAt.Valid {
		session.CompletedAt = &s.CompletedAt.Time
	}
	return session, nil
}
