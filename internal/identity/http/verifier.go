package http

import (
	"fmt"
	"net/http"

	"github.com/folioawards/folio-backend/internal/identity/domain"
	svix "github.com/svix/svix-webhooks/go"
)

const (
	HeaderSvixID        = "svix-id"
	HeaderSvixTimestamp = "svix-timestamp"
	HeaderSvixSignature = "svix-signature"
)

// Verifier checks a raw webhook body against its signature headers.
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

type svixVerifier struct {
	wh *svix.Webhook
}

// NewSvixVerifier builds a verifier from a "whsec_" prefixed signing secret.
func NewSvixVerifier(secret string) (Verifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid identity webhook secret: %w", err)
	}
	return &svixVerifier{wh: wh}, nil
}

func (v *svixVerifier) Verify(payload []byte, headers http.Header) error {
	if err := v.wh.Verify(payload, headers); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	return nil
}
