package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/adapters/repository/postgres"
	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSQLAssemblyJobRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	jobRepo := postgres.NewSQLAssemblyJobRepository(dbConnection)

	findJob := func(t *testing.T, token uuid.UUID) domain.AssemblyJob {
		t.Helper()
		jobs, err := jobRepo.FindRecoverable(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		for _, job := range jobs {
			if job.Token == token {
				return job
			}
		}
		t.Fatalf("job %s not recoverable", token)
		return domain.AssemblyJob{}
	}

	t.Run("Enqueue and Claim - Nominal case", func(t *testing.T) {
		// Arrange
		truncate()
		token := uuid.New()

		// Act
		err := jobRepo.Enqueue(ctx, token)

		// Assert
		require.NoError(t, err)
		claimed, err := jobRepo.Claim(ctx, token, time.Now())
		require.NoError(t, err)
		require.True(t, claimed)
	})

	t.Run("Claim - Second claim loses", func(t *testing.T) {
		// Arrange
		truncate()
		token := uuid.New()
		require.NoError(t, jobRepo.Enqueue(ctx, token))
		first, err := jobRepo.Claim(ctx, token, time.Now())
		require.NoError(t, err)
		require.True(t, first)

		// Act
		second, err := jobRepo.Claim(ctx, token, time.Now())

		// Assert
		require.NoError(t, err)
		require.False(t, second)
	})

	t.Run("Claim - Unknown job is not claimable", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		claimed, err := jobRepo.Claim(ctx, uuid.New(), time.Now())

		// Assert
		require.NoError(t, err)
		require.False(t, claimed)
	})

	t.Run("Enqueue - Requeues a failed job", func(t *testing.T) {
		// Arrange
		truncate()
		token := uuid.New()
		require.NoError(t, jobRepo.Enqueue(ctx, token))
		_, err := jobRepo.Claim(ctx, token, time.Now())
		require.NoError(t, err)
		require.NoError(t, jobRepo.MarkFailed(ctx, token, "storage unavailable"))

		// Act
		err = jobRepo.Enqueue(ctx, token)

		// Assert
		require.NoError(t, err)
		claimed, err := jobRepo.Claim(ctx, token, time.Now())
		require.NoError(t, err)
		require.True(t, claimed)
	})

	t.Run("Enqueue - Does not reopen a done job", func(t *testing.T) {
		// Arrange
		truncate()
		token := uuid.New()
		require.NoError(t, jobRepo.Enqueue(ctx, token))
		_, err := jobRepo.Claim(ctx, token, time.Now())
		require.NoError(t, err)
		require.NoError(t, jobRepo.MarkDone(ctx, token))

		// Act
		err = jobRepo.Enqueue(ctx, token)

		// Assert
		require.NoError(t, err)
		claimed, err := jobRepo.Claim(ctx, token, time.Now())
		require.NoError(t, err)
		require.False(t, claimed)
	})

	t.Run("MarkFailed - Records the cause", func(t *testing.T) {
		// Arrange
		truncate()
		token := uuid.New()
		require.NoError(t, jobRepo.Enqueue(ctx, token))
		_, err := jobRepo.Claim(ctx, token, time.Now())
		require.NoError(t, err)

		// Act
		err = jobRepo.MarkFailed(ctx, token, "chunk fetch failed")

		// Assert
		require.NoError(t, err)
		job := findJob(t, token)
		require.Equal(t, domain.AssemblyJobStatusFailed, job.Status)
		require.NotNil(t, job.LastError)
		require.Equal(t, "chunk fetch failed", *job.LastError)
		require.Equal(t, 1, job.Attempts)
	})

	t.Run("MarkDone - Job not found", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		err := jobRepo.MarkDone(ctx, uuid.New())

		// Assert
		require.ErrorIs(t, err, domain.ErrJobNotFound)
	})

	t.Run("FindRecoverable - Queued, failed and stale running jobs", func(t *testing.T) {
		// Arrange
		truncate()

		queued := uuid.New()
		require.NoError(t, jobRepo.Enqueue(ctx, queued))

		failed := uuid.New()
		require.NoError(t, jobRepo.Enqueue(ctx, failed))
		_, err := jobRepo.Claim(ctx, failed, time.Now())
		require.NoError(t, err)
		require.NoError(t, jobRepo.MarkFailed(ctx, failed, "boom"))

		freshRunning := uuid.New()
		require.NoError(t, jobRepo.Enqueue(ctx, freshRunning))
		_, err = jobRepo.Claim(ctx, freshRunning, time.Now())
		require.NoError(t, err)

		done := uuid.New()
		require.NoError(t, jobRepo.Enqueue(ctx, done))
		_, err = jobRepo.Claim(ctx, done, time.Now())
		require.NoError(t, err)
		require.NoError(t, jobRepo.MarkDone(ctx, done))

		// Act: a cutoff in the past leaves the fresh running job alone
		jobs, err := jobRepo.FindRecoverable(ctx, time.Now().Add(-time.Minute))

		// Assert
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		tokens := make(map[uuid.UUID]bool)
		for _, job := range jobs {
			tokens[job.Token] = true
		}
		require.True(t, tokens[queued])
		require.True(t, tokens[failed])
		require.False(t, tokens[freshRunning])
		require.False(t, tokens[done])
	})

	t.Run("FindRecoverable - Stale running job is included", func(t *testing.T) {
		// Arrange
		truncate()
		token := uuid.New()
		require.NoError(t, jobRepo.Enqueue(ctx, token))
		_, err := jobRepo.Claim(ctx, token, time.Now())
		require.NoError(t, err)

		// Act: a cutoff in the future makes the running job count as stale
		jobs, err := jobRepo.FindRecoverable(ctx, time.Now().Add(time.Minute))

		// Assert
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		require.Equal(t, token, jobs[0].Token)
		require.Equal(t, domain.AssemblyJobStatusRunning, jobs[0].Status)
	})
}
