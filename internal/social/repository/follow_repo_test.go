package repository

import (
	"context"
	"testing"

	"github.com/folioawards/folio-backend/internal/social/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*FollowRepository, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewFollowRepository(mock), mock
}

func TestFollowRepository_Exists(t *testing.T) {
	repo, mock := setupRepo(t)
	mock.ExpectQuery(`select exists \(select 1 from follows where follower_id = \$1 and following_id = \$2\)`).
		WithArgs("a", "b").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("on conflict do nothing", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec(`insert into follows .+ on conflict do nothing`).
			WithArgs("a", "b").
			WillReturnResult(pgxmock.NewResult("INSERT", 0))
		require.NoError(t, repo.Insert(ctx, "a", "b"))
	})

	t.Run("unknown target", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec(`insert into follows`).
			WithArgs("a", "ghost").
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "follows_following_id_fkey"})
		assert.ErrorIs(t, repo.Insert(ctx, "a", "ghost"), domain.ErrTargetNotFound)
	})

	t.Run("self follow check constraint", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec(`insert into follows`).
			WithArgs("a", "a").
			WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "follows_no_self"})
		assert.ErrorIs(t, repo.Insert(ctx, "a", "a"), domain.ErrSelfFollow)
	})
}

func TestFollowRepository_Delete(t *testing.T) {
	repo, mock := setupRepo(t)
	mock.ExpectExec(`delete from follows where follower_id = \$1 and following_id = \$2`).
		WithArgs("a", "b").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.NoError(t, repo.Delete(context.Background(), "a", "b"))
}

func TestFollowRepository_Counts(t *testing.T) {
	repo, mock := setupRepo(t)
	mock.ExpectQuery(`select count`).
		WithArgs("a").
		WillReturnRows(pgxmock.NewRows([]string{"followers", "following"}).AddRow(12, 3))

	followers, following, err := repo.Counts(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 12, followers)
	assert.Equal(t, 3, following)
}
