package postgres_test

import (
	"context"
	"testing"

	"github.com/aalapcshah/Klipz-sub005/internal/adapters/repository/postgres"
	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLUnitOfWork_Execute(t *testing.T) {

	//Arrange
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	uow := postgres.NewUnitOfWork(dbConnection)
	sessionRepo := postgres.NewSQLUploadSessionRepository(dbConnection)

	t.Run("Should commit when no error", func(t *testing.T) {
		truncate()
		token := uuid.New()

		//act
		err := uow.Execute(ctx, func(u port.UnitOfWork) error {
			if err := u.SessionRepo().Create(ctx, newTestSession(token, "owner-1")); err != nil {
				return err
			}
			return u.JobRepo().Enqueue(ctx, token)
		})

		//assert
		require.NoError(t, err)
		saved, err := sessionRepo.FindByToken(ctx, token)
		require.NoError(t, err)
		require.Equal(t, token, saved.Token)
	})

	t.Run("Should rollback when error occurs", func(t *testing.T) {
		truncate()
		token := uuid.New()

		//act
		err := uow.Execute(ctx, func(u port.UnitOfWork) error {
			_ = u.SessionRepo().Create(ctx, newTestSession(token, "owner-1"))
			return assert.AnError
		})

		//assert
		require.ErrorIs(t, err, assert.AnError)
		_, err = sessionRepo.FindByToken(ctx, token)
		require.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}
