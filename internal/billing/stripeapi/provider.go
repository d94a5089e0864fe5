package stripeapi

import (
	"context"
	"fmt"
	"time"

	"github.com/folioawards/folio-backend/internal/billing/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"golang.org/x/time/rate"
)

// Provider reads subscriptions and customers from the Stripe API. Calls are
// paced by a shared limiter to stay under the account's rate limit.
type Provider struct {
	api     *client.API
	limiter *rate.Limiter
}

func NewProvider(secretKey string, ratePerSec float64, burst int) *Provider {
	if burst <= 0 {
		burst = 1
	}
	return &Provider{
		api:     client.New(secretKey, nil),
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
	}
}

func (p *Provider) GetSubscription(ctx context.Context, id string) (*domain.ProviderSubscription, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("customer")

	sub, err := p.api.Subscriptions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get subscription %s: %w", id, err)
	}
	return fromStripeSubscription(sub), nil
}

func (p *Provider) GetCustomer(ctx context.Context, id string) (*domain.ProviderCustomer, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := &stripe.CustomerParams{}
	params.Context = ctx

	c, err := p.api.Customers.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get customer %s: %w", id, err)
	}
	return &domain.ProviderCustomer{ID: c.ID, Metadata: c.Metadata, Deleted: c.Deleted}, nil
}

func fromStripeSubscription(s *stripe.Subscription) *domain.ProviderSubscription {
	out := &domain.ProviderSubscription{
		ID:                s.ID,
		Status:            domain.Status(s.Status),
		PeriodStart:       unix(s.CurrentPeriodStart),
		PeriodEnd:         unix(s.CurrentPeriodEnd),
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
		if s.Customer.Metadata != nil || s.Customer.Deleted {
			out.Customer = &domain.ProviderCustomer{
				ID:       s.Customer.ID,
				Metadata: s.Customer.Metadata,
				Deleted:  s.Customer.Deleted,
			}
		}
	}
	if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Price != nil {
		out.PriceID = s.Items.Data[0].Price.ID
	}
	return out
}

func unix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
