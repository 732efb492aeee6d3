package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
)

type sqlAssemblyJobRepository struct {
	db SQLQuerier
}

// NewSQLAssemblyJobRepository creates a new sqlAssemblyJobRepository
func NewSQLAssemblyJobRepository(db SQLQuerier) port.AssemblyJobRepository {
	return &sqlAssemblyJobRepository{db: db}
}

// Enqueue creates the job or resets an existing non-terminal one to queued
func (s *sqlAssemblyJobRepository) Enqueue(ctx context.Context, token uuid.UUID) error {
	query := `
		INSERT INTO assembly_job (token, status)
		VALUES ($1, 'queued')
		ON CONFLICT (token) DO UPDATE
		SET status = 'queued', last_error = NULL, updated_at = now()
		WHERE assembly_job.status IN ('queued', 'running', 'failed')`

	_, err := s.db.ExecContext(ctx, query, token)
	return err
}

// Claim moves a queued job to running. Zero rows affected means someone else
// owns the job or it already finished.
func (s *sqlAssemblyJobRepository) Claim(ctx context.Context, token uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE assembly_job
		SET status = 'running', attempts = attempts + 1, started_at = $1, updated_at = now()
		WHERE token = $2 AND status = 'queued'`

	result, err := s.db.ExecContext(ctx, query, now, token)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (s *sqlAssemblyJobRepository) MarkDone(ctx context.Context, token uuid.UUID) error {
	return s.setStatus(ctx, token, domain.AssemblyJobStatusDone, nil)
}

func (s *sqlAssemblyJobRepository) MarkSkipped(ctx context.Context, token uuid.UUID) error {
	return s.setStatus(ctx, token, domain.AssemblyJobStatusSkipped, nil)
}

func (s *sqlAssemblyJobRepository) MarkFailed(ctx context.Context, token uuid.UUID, cause string) error {
	return s.setStatus(ctx, token, domain.AssemblyJobStatusFailed, &cause)
}

func (s *sqlAssemblyJobRepository) setStatus(ctx context.Context, token uuid.UUID, status domain.AssemblyJobStatus, cause *string) error {
	query := `UPDATE assembly_job SET status = $1, last_error = $2, updated_at = now() WHERE token = $3`

	result, err := s.db.ExecContext(ctx, query, status, cause, token)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

// FindRecoverable returns jobs that never ran to completion. Running jobs
// only count once they are older than the stale cutoff, meaning the process
// that claimed them likely died mid-assembly.
func (s *sqlAssemblyJobRepository) FindRecoverable(ctx context.Context, staleBefore time.Time) ([]domain.AssemblyJob, error) {
	query := `
		SELECT token, status, attempts, last_error, created_at, updated_at, started_at
		FROM assembly_job
		WHERE status IN ('queued', 'failed')
		   OR (status = 'running' AND updated_at < $1)
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, staleBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.AssemblyJob
	for rows.Next() {
		var row dbAssemblyJob
		if err := rows.Scan(
			&row.Token,
			&row.Status,
			&row.Attempts,
			&row.LastError,
			&row.CreatedAt,
			&row.UpdatedAt,
			&row.StartedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

type dbAssemblyJob struct {
	Token     uuid.UUID
	Status    string
	Attempts  int
	LastError sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
	StartedAt sql.NullTime
}

// ToDomain converts db obj to domain
func (j *dbAssemblyJob) ToDomain() *domain.AssemblyJob {
	job := &domain.AssemblyJob{
		Token:     j.Token,
		Status:    domain.AssemblyJobStatus(j.Status),
		Attempts:  j.Attempts,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if j.LastError.Valid {
		job.LastError = &j.LastError.String
	}
	if j.StartedAt.Valid {
		job.StartedAt = &j.StartedAt.Time
	}
	return job
}
