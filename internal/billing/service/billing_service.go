package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/folioawards/folio-backend/internal/billing/domain"
)

// Provider is the billing provider's API.
type Provider interface {
	GetSubscription(ctx context.Context, id string) (*domain.ProviderSubscription, error)
	GetCustomer(ctx context.Context, id string) (*domain.ProviderCustomer, error)
}

type SubscriptionStore interface {
	Upsert(ctx context.Context, s domain.Subscription) error
	Delete(ctx context.Context, subscriptionID string) error
	HasActive(ctx context.Context, userID string, now time.Time) (bool, error)
}

type Service struct {
	store     SubscriptionStore
	provider  Provider
	userIDKey string
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Service)

// WithClock overrides time.Now for entitlement checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store SubscriptionStore, provider Provider, userIDKey string, logger *slog.Logger, opts ...Option) *Service {
	if userIDKey == "" {
		userIDKey = "user_id"
	}
	s := &Service{
		store:     store,
		provider:  provider,
		userIDKey: userIDKey,
		now:       time.Now,
		logger:    logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handle applies one verified event. Unattributed subscriptions are logged
// and dropped so the provider stops redelivering them.
func (s *Service) Handle(ctx context.Context, evt domain.Envelope) error {
	err := s.dispatch(ctx, evt)
	if errors.Is(err, domain.ErrUnattributedSubscription) {
		s.logger.WarnContext(ctx, "billing event dropped",
			slog.String("event_id", evt.ID),
			slog.String("type", string(evt.Type)),
			slog.Any("error", err),
		)
		return nil
	}
	return err
}

func (s *Service) dispatch(ctx context.Context, evt domain.Envelope) error {
	switch evt.Type {
	case domain.EventCheckoutCompleted:
		cs, err := domain.DecodeCheckoutSession(evt.Object)
		if err != nil {
			return err
		}
		if cs.Mode != "subscription" || cs.SubscriptionID == "" {
			return nil
		}
		return s.refetch(ctx, cs.SubscriptionID)

	case domain.EventSubscriptionCreated, domain.EventSubscriptionUpdated:
		sub, err := domain.DecodeSubscription(evt.Object)
		if err != nil {
			return err
		}
		return s.Reconcile(ctx, sub)

	case domain.EventSubscriptionDeleted:
		id, err := domain.DecodeSubscriptionID(evt.Object)
		if err != nil {
			return err
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "subscription deleted", slog.String("subscription_id", id))
		return nil

	case domain.EventInvoicePaid, domain.EventInvoicePaymentFailed:
		inv, err := domain.DecodeInvoice(evt.Object)
		if err != nil {
			return err
		}
		if inv.SubscriptionID == "" {
			return nil
		}
		return s.refetch(ctx, inv.SubscriptionID)
	}

	s.logger.DebugContext(ctx, "billing event ignored", slog.String("type", string(evt.Type)))
	return nil
}

func (s *Service) refetch(ctx context.Context, subscriptionID string) error {
	sub, err := s.provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription %s: %w", subscriptionID, err)
	}
	return s.Reconcile(ctx, sub)
}

// Reconcile upserts the local row for a provider subscription.
func (s *Service) Reconcile(ctx context.Context, sub *domain.ProviderSubscription) error {
	customer := sub.Customer
	if customer == nil {
		c, err := s.provider.GetCustomer(ctx, sub.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to fetch customer %s: %w", sub.CustomerID, err)
		}
		customer = c
	}

	userID := customer.Metadata[s.userIDKey]
	if customer.Deleted || userID == "" {
		return fmt.Errorf("subscription %s customer %s: %w", sub.ID, sub.CustomerID, domain.ErrUnattributedSubscription)
	}
	if !sub.Status.Valid() {
		return fmt.Errorf("%w: subscription %s status %q", domain.ErrMalformedObject, sub.ID, sub.Status)
	}

	row := domain.Subscription{
		ID:                 sub.ID,
		UserID:             userID,
		CustomerID:         sub.CustomerID,
		PriceID:            sub.PriceID,
		Status:             sub.Status,
		CurrentPeriodStart: sub.PeriodStart,
		CurrentPeriodEnd:   sub.PeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}
	if err := s.store.Upsert(ctx, row); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "subscription reconciled",
		slog.String("subscription_id", sub.ID),
		slog.String("user_id", userID),
		slog.String("status", string(sub.Status)),
	)
	return nil
}

// IsPremium is evaluated at read time, so a lapsed period needs no webhook.
func (s *Service) IsPremium(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.store.HasActive(ctx, userID, s.now())
}
