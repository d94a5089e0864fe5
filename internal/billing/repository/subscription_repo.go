package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/folioawards/folio-backend/internal/billing/domain"
	"github.com/folioawards/folio-backend/internal/storage/postgres"
)

type SubscriptionRepository struct {
	db postgres.DBTX
}

func NewSubscriptionRepository(db postgres.DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Upsert overwrites every provider-owned column; the last event wins.
func (r *SubscriptionRepository) Upsert(ctx context.Context, s domain.Subscription) error {
	const q = `
insert into subscriptions (
  stripe_subscription_id, user_id, stripe_customer_id, stripe_price_id, status,
  current_period_start, current_period_end, cancel_at_period_end
) values ($1, $2, $3, $4, $5, $6, $7, $8)
on conflict (stripe_subscription_id) do update set
  user_id              = excluded.user_id,
  stripe_customer_id   = excluded.stripe_customer_id,
  stripe_price_id      = excluded.stripe_price_id,
  status               = excluded.status,
  current_period_start = excluded.current_period_start,
  current_period_end   = excluded.current_period_end,
  cancel_at_period_end = excluded.cancel_at_period_end,
  updated_at           = now()`

	_, err := r.db.Exec(ctx, q,
		s.ID, s.UserID, s.CustomerID, s.PriceID, string(s.Status),
		s.CurrentPeriodStart, s.CurrentPeriodEnd, s.CancelAtPeriodEnd,
	)
	if postgres.IsForeignKeyViolation(err) {
		return fmt.Errorf("subscription %s user %s: %w", s.ID, s.UserID, domain.ErrUnknownUser)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert subscription %s: %w", s.ID, err)
	}
	return nil
}

// Delete is idempotent.
func (r *SubscriptionRepository) Delete(ctx context.Context, subscriptionID string) error {
	if _, err := r.db.Exec(ctx, `delete from subscriptions where stripe_subscription_id = $1`, subscriptionID); err != nil {
		return fmt.Errorf("failed to delete subscription %s: %w", subscriptionID, err)
	}
	return nil
}

// HasActive reports whether the user holds an active subscription whose
// period has not ended at now.
func (r *SubscriptionRepository) HasActive(ctx context.Context, userID string, now time.Time) (bool, error) {
	const q = `
select exists (
  select 1 from subscriptions
  where user_id = $1 and status = 'active' and current_period_end >= $2
)`

	var ok bool
	if err := r.db.QueryRow(ctx, q, userID, now).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check entitlement for %s: %w", userID, err)
	}
	return ok, nil
}
