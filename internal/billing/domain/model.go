package domain

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusTrialing          Status = "trialing"
	StatusActive            Status = "active"
	StatusCanceled          Status = "canceled"
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
	StatusPastDue           Status = "past_due"
	StatusUnpaid            Status = "unpaid"
	StatusPaused            Status = "paused"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTrialing, StatusActive, StatusCanceled, StatusIncomplete,
		StatusIncompleteExpired, StatusPastDue, StatusUnpaid, StatusPaused:
		return true
	}
	return false
}

// Subscription is the local mirror of a provider subscription, keyed by the
// provider's subscription id.
type Subscription struct {
	ID                 string    `json:"stripe_subscription_id"`
	UserID             string    `json:"user_id"`
	CustomerID         string    `json:"stripe_customer_id"`
	PriceID            string    `json:"stripe_price_id"`
	Status             Status    `json:"status"`
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	CancelAtPeriodEnd  bool      `json:"cancel_at_period_end"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Entitles reports whether the row grants premium at now.
func (s *Subscription) Entitles(now time.Time) bool {
	return s.Status == StatusActive && !s.CurrentPeriodEnd.Before(now)
}

// ProviderCustomer is the subset of the billing customer we read.
type ProviderCustomer struct {
	ID       string
	Metadata map[string]string
	Deleted  bool
}

// ProviderSubscription is a subscription as reported by the provider.
// Customer is set only when the provider expanded it.
type ProviderSubscription struct {
	ID                string
	CustomerID        string
	Customer          *ProviderCustomer
	Status            Status
	PriceID           string
	PeriodStart       time.Time
	PeriodEnd         time.Time
	CancelAtPeriodEnd bool
}

// Envelope is a verified billing event with its undecoded data object.
type Envelope struct {
	ID     string
	Type   EventType
	Object json.RawMessage
}
