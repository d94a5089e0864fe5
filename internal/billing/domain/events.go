package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventCheckoutCompleted    EventType = "checkout.session.completed"
	EventSubscriptionCreated  EventType = "customer.subscription.created"
	EventSubscriptionUpdated  EventType = "customer.subscription.updated"
	EventSubscriptionDeleted  EventType = "customer.subscription.deleted"
	EventInvoicePaid          EventType = "invoice.payment_succeeded"
	EventInvoicePaymentFailed EventType = "invoice.payment_failed"
)

// CheckoutSession is the part of a checkout session relevant to billing.
type CheckoutSession struct {
	ID             string
	Mode           string
	SubscriptionID string
}

type Invoice struct {
	ID             string
	SubscriptionID string
}

// expandable decodes a provider reference that is either a bare id or the
// expanded object.
type expandable struct {
	ID       string
	Object   json.RawMessage
	Expanded bool
}

func (e *expandable) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &e.ID)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	e.ID = obj.ID
	e.Object = append(json.RawMessage(nil), b...)
	e.Expanded = true
	return nil
}

type wireCustomer struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
	Deleted  bool              `json:"deleted"`
}

type wireItem struct {
	Price struct {
		ID string `json:"id"`
	} `json:"price"`
	CurrentPeriodStart int64 `json:"current_period_start"`
	CurrentPeriodEnd   int64 `json:"current_period_end"`
}

type wireSubscription struct {
	ID                 string     `json:"id"`
	Customer           expandable `json:"customer"`
	Status             Status     `json:"status"`
	CurrentPeriodStart int64      `json:"current_period_start"`
	CurrentPeriodEnd   int64      `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	Items              struct {
		Data []wireItem `json:"data"`
	} `json:"items"`
}

// DecodeSubscription reads a subscription object. Newer API versions carry
// the billing period on the items instead of the subscription.
func DecodeSubscription(raw []byte) (*ProviderSubscription, error) {
	var w wireSubscription
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: subscription: %v", ErrMalformedObject, err)
	}
	if w.ID == "" || w.Customer.ID == "" {
		return nil, fmt.Errorf("%w: subscription without id or customer", ErrMalformedObject)
	}

	sub := &ProviderSubscription{
		ID:                w.ID,
		CustomerID:        w.Customer.ID,
		Status:            w.Status,
		CancelAtPeriodEnd: w.CancelAtPeriodEnd,
	}

	start, end := w.CurrentPeriodStart, w.CurrentPeriodEnd
	if len(w.Items.Data) > 0 {
		first := w.Items.Data[0]
		sub.PriceID = first.Price.ID
		if start == 0 {
			start = first.CurrentPeriodStart
		}
		if end == 0 {
			end = first.CurrentPeriodEnd
		}
	}
	sub.PeriodStart = unix(start)
	sub.PeriodEnd = unix(end)

	if w.Customer.Expanded {
		var c wireCustomer
		if err := json.Unmarshal(w.Customer.Object, &c); err != nil {
			return nil, fmt.Errorf("%w: customer: %v", ErrMalformedObject, err)
		}
		if c.Metadata != nil || c.Deleted {
			sub.Customer = &ProviderCustomer{ID: c.ID, Metadata: c.Metadata, Deleted: c.Deleted}
		}
	}
	return sub, nil
}

// DecodeSubscriptionID reads only the id, enough for deletions.
func DecodeSubscriptionID(raw []byte) (string, error) {
	var w struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return "", fmt.Errorf("%w: subscription: %v", ErrMalformedObject, err)
	}
	if w.ID == "" {
		return "", fmt.Errorf("%w: subscription without id", ErrMalformedObject)
	}
	return w.ID, nil
}

func DecodeCheckoutSession(raw []byte) (*CheckoutSession, error) {
	var w struct {
		ID           string     `json:"id"`
		Mode         string     `json:"mode"`
		Subscription expandable `json:"subscription"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: checkout session: %v", ErrMalformedObject, err)
	}
	return &CheckoutSession{ID: w.ID, Mode: w.Mode, SubscriptionID: w.Subscription.ID}, nil
}

func DecodeInvoice(raw []byte) (*Invoice, error) {
	var w struct {
		ID           string     `json:"id"`
		Subscription expandable `json:"subscription"`
		Parent       struct {
			SubscriptionDetails struct {
				Subscription expandable `json:"subscription"`
			} `json:"subscription_details"`
		} `json:"parent"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: invoice: %v", ErrMalformedObject, err)
	}
	subID := w.Subscription.ID
	if subID == "" {
		subID = w.Parent.SubscriptionDetails.Subscription.ID
	}
	return &Invoice{ID: w.ID, SubscriptionID: subID}, nil
}

func unix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
