package stripeapi

import (
	"fmt"
	"time"

	"github.com/folioawards/folio-backend/internal/billing/domain"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Verifier checks the Stripe-Signature header over the raw request body.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance}
}

func (v *Verifier) Verify(payload []byte, signature string) (domain.Envelope, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	env := domain.Envelope{ID: event.ID, Type: domain.EventType(event.Type)}
	if event.Data != nil {
		env.Object = event.Data.Raw
	}
	return env, nil
}
