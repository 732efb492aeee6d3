package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type sqlChunkRepository struct {
	db SQLQuerier
}

// NewSQLChunkRepository creates a new sqlChunkRepository
func NewSQLChunkRepository(db SQLQuerier) port.ChunkRepository {
	return &sqlChunkRepository{db: db}
}

// CreateBatch inserts all chunk placeholders for a session in one statement
func (s *sqlChunkRepository) CreateBatch(ctx context.Context, chunks []domain.ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	tokens := make([]uuid.UUID, 0, len(chunks))
	indices := make([]int64, 0, len(chunks))
	keys := make([]string, 0, len(chunks))
	statuses := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		tokens = append(tokens, chunk.SessionToken)
		indices = append(indices, int64(chunk.Index))
		keys = append(keys, chunk.StorageKey)
		statuses = append(statuses, string(chunk.Status))
	}

	query := `
		INSERT INTO upload_chunk (session_token, chunk_index, storage_key, status)
		SELECT * FROM unnest($1::uuid[], $2::bigint[], $3::text[], $4::text[])`

	_, err := s.db.ExecContext(ctx, query, pq.Array(tokens), pq.Array(indices), pq.Array(keys), pq.Array(statuses))
	return err
}

func (s *sqlChunkRepository) FindBySession(ctx context.Context, token uuid.UUID) ([]domain.ChunkRecord, error) {
	query := `
		SELECT session_token, chunk_index, size, storage_key, status, checksum, uploaded_at
		FROM upload_chunk
		WHERE session_token = $1
		ORDER BY chunk_index`

	rows, err := s.db.QueryContext(ctx, query, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.ChunkRecord
	for rows.Next() {
		var row dbChunk
		if err := rows.Scan(
			&row.SessionToken,
			&row.Index,
			&row.Size,
			&row.StorageKey,
			&row.Status,
			&row.Checksum,
			&row.UploadedAt,
		); err != nil {
			return nil, err
		}
		chunks = append(chunks, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return chunks, nil
}

func (s *sqlChunkRepository) FindOne(ctx context.Context, token uuid.UUID, index int) (*domain.ChunkRecord, error) {
	query := `
		SELECT session_token, chunk_index, size, storage_key, status, checksum, uploaded_at
		FROM upload_chunk
		WHERE session_token = $1 AND chunk_index = $2`

	var row dbChunk
	err := s.db.QueryRowContext(ctx, query, token, index).Scan(
		&row.SessionToken,
		&row.Index,
		&row.Size,
		&row.StorageKey,
		&row.Status,
		&row.Checksum,
		&row.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, err
	}

	return row.ToDomain(), nil
}

// MarkUploaded records an accepted chunk. Re-uploads simply overwrite the
// size, checksum and timestamp of the existing row.
func (s *sqlChunkRepository) MarkUploaded(ctx context.Context, token uuid.UUID, index int, size int64, checksum string, uploadedAt time.Time) error {
	query := `
		UPDATE upload_chunk
		SET status = 'uploaded', size = $1, checksum = $2, uploaded_at = $3
		WHERE session_token = $4 AND chunk_index = $5`

	result, err := s.db.ExecContext(ctx, query, size, checksum, uploadedAt, token, index)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrChunkNotFound
	}

	return nil
}

// CountUploaded recomputes progress from chunk state
func (s *sqlChunkRepository) CountUploaded(ctx context.Context, token uuid.UUID) (int, int64, error) {
	query := `
		SELECT count(*), coalesce(sum(size), 0)
		FROM upload_chunk
		WHERE session_token = $1 AND status IN ('uploaded', 'verified')`

	var count int
	var bytes int64
	if err := s.db.QueryRowContext(ctx, query, token).Scan(&count, &bytes); err != nil {
		return 0, 0, err
	}

	return count, bytes, nil
}

func (s *sqlChunkRepository) CountPending(ctx context.Context, token uuid.UUID) (int, error) {
	query := `SELECT count(*) FROM upload_chunk WHERE session_token = $1 AND status = 'pending'`

	var count int
	if err := s.db.QueryRowContext(ctx, query, token).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (s *sqlChunkRepository) DeleteBySession(ctx context.Context, token uuid.UUID) error {
	query := `DELETE FROM upload_chunk WHERE session_token = $1`

	_, err := s.db.ExecContext(ctx, query, token)
	return err
}

type dbChunk struct {
	SessionToken uuid.UUID
	Index        int
	Size         int64
	StorageKey   string
	Status       string
	Checksum     string
	UploadedAt   sql.NullTime
}

// ToDomain converts db obj to domain
func (c *dbChunk) ToDomain() *domain.ChunkRecord {
	chunk := &domain.ChunkRecord{
		SessionToken: c.SessionToken,
		Index:        c.Index,
		Size:         c.Size,
		StorageKey:   c.StorageKey,
		Status:       domain.ChunkStatus(c.Status),
		Checksum:     c.Checksum,
	}
	if c.UploadedAt.Valid {
		chunk.UploadedAt = &c.UploadedAt.Time
	}
	return chunk
}
