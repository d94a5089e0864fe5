package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/folioawards/folio-backend/internal/awards/domain"
	"github.com/folioawards/folio-backend/internal/storage/postgres"
	"github.com/jackc/pgx/v5"
)

type AwardRepository struct {
	db postgres.DBTX
}

func NewAwardRepository(db postgres.DBTX) *AwardRepository {
	return &AwardRepository{db: db}
}

// Insert never overwrites an existing (project, type) row.
func (r *AwardRepository) Insert(ctx context.Context, projectID string, t domain.Type, awardedAt time.Time) (*domain.Award, error) {
	const q = `
insert into awards (project_id, award_type, awarded_at)
values ($1, $2, $3)
returning project_id, award_type, awarded_at, created_at`

	row := r.db.QueryRow(ctx, q, projectID, string(t), awardedAt)
	a, err := scanAward(row)
	if postgres.IsUniqueViolation(err) {
		return nil, domain.ErrAlreadyAwarded
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert award %s/%s: %w", projectID, t, err)
	}
	return a, nil
}

// Delete is idempotent. It returns the removed row, or nil when there was
// none.
func (r *AwardRepository) Delete(ctx context.Context, projectID string, t domain.Type) (*domain.Award, error) {
	const q = `
delete from awards where project_id = $1 and award_type = $2
returning project_id, award_type, awarded_at, created_at`

	a, err := scanAward(r.db.QueryRow(ctx, q, projectID, string(t)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete award %s/%s: %w", projectID, t, err)
	}
	return a, nil
}

func (r *AwardRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Award, error) {
	const q = `
select project_id, award_type, awarded_at, created_at
from awards where project_id = $1
order by awarded_at desc, award_type`

	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list awards for %s: %w", projectID, err)
	}
	defer rows.Close()

	out := make([]domain.Award, 0)
	for rows.Next() {
		a, err := scanAward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan award: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAward(row pgx.Row) (*domain.Award, error) {
	var a domain.Award
	var t string
	if err := row.Scan(&a.ProjectID, &t, &a.AwardedAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Type = domain.Type(t)
	return &a, nil
}
