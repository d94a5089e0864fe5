package repository

import (
	"context"
	"fmt"

	"github.com/folioawards/folio-backend/internal/social/domain"
	"github.com/folioawards/folio-backend/internal/storage/postgres"
)

type FollowRepository struct {
	db postgres.DBTX
}

func NewFollowRepository(db postgres.DBTX) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	const q = `select exists (select 1 from follows where follower_id = $1 and following_id = $2)`

	var ok bool
	if err := r.db.QueryRow(ctx, q, followerID, followingID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to read follow %s -> %s: %w", followerID, followingID, err)
	}
	return ok, nil
}

// Insert is a no-op when the edge exists.
func (r *FollowRepository) Insert(ctx context.Context, followerID, followingID string) error {
	const q = `insert into follows (follower_id, following_id) values ($1, $2) on conflict do nothing`

	_, err := r.db.Exec(ctx, q, followerID, followingID)
	if postgres.IsForeignKeyViolation(err) {
		return domain.ErrTargetNotFound
	}
	if postgres.ConstraintName(err) == "follows_no_self" {
		return domain.ErrSelfFollow
	}
	if err != nil {
		return fmt.Errorf("failed to insert follow %s -> %s: %w", followerID, followingID, err)
	}
	return nil
}

// Delete is idempotent.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	const q = `delete from follows where follower_id = $1 and following_id = $2`

	if _, err := r.db.Exec(ctx, q, followerID, followingID); err != nil {
		return fmt.Errorf("failed to delete follow %s -> %s: %w", followerID, followingID, err)
	}
	return nil
}

// Counts returns follower and following totals for a profile.
func (r *FollowRepository) Counts(ctx context.Context, userID string) (followers, following int, err error) {
	const q = `
select
  (select count(*) from follows where following_id = $1),
  (select count(*) from follows where follower_id = $1)`

	if err = r.db.QueryRow(ctx, q, userID).Scan(&followers, &following); err != nil {
		return 0, 0, fmt.Errorf("failed to count follows for %s: %w", userID, err)
	}
	return followers, following, nil
}
