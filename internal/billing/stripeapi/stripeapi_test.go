package stripeapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/folioawards/folio-backend/internal/billing/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const whsec = "whsec_test_billing"

// signPayload builds a Stripe-Signature header value for tests.
func signPayload(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.", ts)))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

const eventBody = `{"id":"evt_1","object":"event","type":"customer.subscription.updated","api_version":"2020-08-27","data":{"object":{"id":"sub_1","customer":"cus_1","status":"active"}}}`

func TestVerifier(t *testing.T) {
	v := NewVerifier(whsec, 5*time.Minute)

	t.Run("valid signature", func(t *testing.T) {
		env, err := v.Verify([]byte(eventBody), signPayload([]byte(eventBody), whsec, time.Now()))
		require.NoError(t, err)
		assert.Equal(t, "evt_1", env.ID)
		assert.Equal(t, domain.EventSubscriptionUpdated, env.Type)

		sub, err := domain.DecodeSubscription(env.Object)
		require.NoError(t, err)
		assert.Equal(t, "sub_1", sub.ID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.Verify([]byte(eventBody), signPayload([]byte(eventBody), "whsec_other", time.Now()))
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})

	t.Run("outside tolerance", func(t *testing.T) {
		_, err := v.Verify([]byte(eventBody), signPayload([]byte(eventBody), whsec, time.Now().Add(-time.Hour)))
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})

	t.Run("tampered body", func(t *testing.T) {
		sig := signPayload([]byte(eventBody), whsec, time.Now())
		_, err := v.Verify([]byte(eventBody+" "), sig)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})
}

func TestFromStripeSubscription(t *testing.T) {
	s := &stripe.Subscription{
		ID:                 "sub_1",
		Status:             stripe.SubscriptionStatusActive,
		CurrentPeriodStart: 100,
		CurrentPeriodEnd:   200,
		Customer:           &stripe.Customer{ID: "cus_1", Metadata: map[string]string{"user_id": "u1"}},
		Items: &stripe.SubscriptionItemList{Data: []*stripe.SubscriptionItem{
			{Price: &stripe.Price{ID: "price_pro"}},
		}},
	}

	got := fromStripeSubscription(s)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Equal(t, "cus_1", got.CustomerID)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "u1", got.Customer.Metadata["user_id"])
	assert.Equal(t, "price_pro", got.PriceID)
	assert.Equal(t, time.Unix(200, 0).UTC(), got.PeriodEnd)

	bare := fromStripeSubscription(&stripe.Subscription{ID: "sub_2", Customer: &stripe.Customer{ID: "cus_2"}})
	assert.Nil(t, bare.Customer)
	assert.Empty(t, bare.PriceID)
}
