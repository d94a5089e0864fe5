package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/folioawards/folio-backend/internal/api/http/middleware"
	"github.com/folioawards/folio-backend/internal/auth"
	"github.com/folioawards/folio-backend/internal/billing/domain"
	"github.com/gin-gonic/gin"
)

const (
	HeaderStripeSignature = "Stripe-Signature"
	deliverySource        = "billing"
	maxBodyBytes          = 1 << 20
)

type Verifier interface {
	Verify(payload []byte, signature string) (domain.Envelope, error)
}

type EventHandler interface {
	Handle(ctx context.Context, evt domain.Envelope) error
}

type Entitlements interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

type DeliveryLog interface {
	Seen(ctx context.Context, source, id string) (bool, error)
	Mark(ctx context.Context, source, id string) error
}

type Handler struct {
	verifier     Verifier
	events       EventHandler
	entitlements Entitlements
	deliveries   DeliveryLog
	logger       *slog.Logger
}

func New(verifier Verifier, events EventHandler, entitlements Entitlements, deliveries DeliveryLog, logger *slog.Logger) *Handler {
	return &Handler{
		verifier:     verifier,
		events:       events,
		entitlements: entitlements,
		deliveries:   deliveries,
		logger:       logger,
	}
}

// RegisterWebhooks mounts the provider callback; it must not sit behind
// session auth.
func (h *Handler) RegisterWebhooks(rg *gin.RouterGroup) {
	rg.POST("/billing", h.Receive)
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/me/entitlement", auth.RequireUser(), h.Entitlement)
}

func (h *Handler) Receive(c *gin.Context) {
	ctx := c.Request.Context()

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	// a truncated body would fail verification and be misreported as a bad signature
	if len(payload) > maxBodyBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	evt, err := h.verifier.Verify(payload, c.GetHeader(HeaderStripeSignature))
	if err != nil {
		h.logger.WarnContext(ctx, "billing webhook rejected",
			slog.String("request_id", middleware.GetRequestID(ctx)),
			slog.Any("error", err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if h.seen(ctx, evt.ID) {
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}

	if err := h.events.Handle(ctx, evt); err != nil {
		if errors.Is(err, domain.ErrMalformedObject) {
			h.logger.WarnContext(ctx, "billing event malformed",
				slog.String("request_id", middleware.GetRequestID(ctx)),
				slog.String("event_id", evt.ID),
				slog.String("type", string(evt.Type)),
				slog.Any("error", err),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
			return
		}
		h.logger.ErrorContext(ctx, "billing event failed",
			slog.String("request_id", middleware.GetRequestID(ctx)),
			slog.String("event_id", evt.ID),
			slog.String("type", string(evt.Type)),
			slog.Any("error", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		return
	}

	if h.deliveries != nil {
		if err := h.deliveries.Mark(ctx, deliverySource, evt.ID); err != nil {
			h.logger.WarnContext(ctx, "failed to record delivery", slog.String("event_id", evt.ID), slog.Any("error", err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) Entitlement(c *gin.Context) {
	premium, err := h.entitlements.IsPremium(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "entitlement check failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "an internal error occurred"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"premium": premium})
}

func (h *Handler) seen(ctx context.Context, id string) bool {
	if h.deliveries == nil {
		return false
	}
	ok, err := h.deliveries.Seen(ctx, deliverySource, id)
	if err != nil {
		h.logger.WarnContext(ctx, "delivery log unavailable", slog.Any("error", err))
		return false
	}
	return ok
}
