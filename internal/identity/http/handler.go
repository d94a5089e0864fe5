package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/folioawards/folio-backend/internal/api/http/middleware"
	"github.com/folioawards/folio-backend/internal/identity/domain"
	"github.com/gin-gonic/gin"
)

const (
	deliverySource = "identity"
	maxBodyBytes   = 1 << 20
)

type EventHandler interface {
	Handle(ctx context.Context, evt domain.Event) error
}

type DeliveryLog interface {
	Seen(ctx context.Context, source, id string) (bool, error)
	Mark(ctx context.Context, source, id string) error
}

type Handler struct {
	verifier   Verifier
	processor  EventHandler
	deliveries DeliveryLog
	logger     *slog.Logger
}

func New(verifier Verifier, processor EventHandler, deliveries DeliveryLog, logger *slog.Logger) *Handler {
	return &Handler{
		verifier:   verifier,
		processor:  processor,
		deliveries: deliveries,
		logger:     logger,
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/identity", h.Receive)
}

// Receive verifies and applies one identity provider delivery. Any non-2xx
// answer makes the provider redeliver.
func (h *Handler) Receive(c *gin.Context) {
	ctx := c.Request.Context()
	msgID := c.GetHeader(HeaderSvixID)
	if msgID == "" || c.GetHeader(HeaderSvixTimestamp) == "" || c.GetHeader(HeaderSvixSignature) == "" {
		c.String(http.StatusBadRequest, "Error occurred -- no svix headers")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.String(http.StatusBadRequest, "Error occurred -- unreadable body")
		return
	}

	if err := h.verifier.Verify(body, c.Request.Header); err != nil {
		h.logger.WarnContext(ctx, "identity webhook rejected",
			slog.String("request_id", middleware.GetRequestID(ctx)),
			slog.String("svix_id", msgID),
			slog.Any("error", err),
		)
		c.String(http.StatusBadRequest, "Error occurred -- invalid signature")
		return
	}

	if h.seen(ctx, msgID) {
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}

	evt, err := domain.Decode(body)
	switch {
	case errors.Is(err, domain.ErrUnsupportedEvent):
		h.logger.InfoContext(ctx, "identity event ignored", slog.String("svix_id", msgID), slog.Any("error", err))
		c.JSON(http.StatusOK, gin.H{"received": true, "ignored": true})
		return
	case err != nil:
		c.String(http.StatusBadRequest, "Error occurred -- "+err.Error())
		return
	}

	if err := h.processor.Handle(ctx, evt); err != nil {
		h.logger.ErrorContext(ctx, "identity event failed",
			slog.String("request_id", middleware.GetRequestID(ctx)),
			slog.String("svix_id", msgID),
			slog.String("type", string(evt.Type())),
			slog.Any("error", err),
		)
		c.String(http.StatusBadRequest, "Error processing webhook: "+err.Error())
		return
	}

	if h.deliveries != nil {
		if err := h.deliveries.Mark(ctx, deliverySource, msgID); err != nil {
			h.logger.WarnContext(ctx, "failed to record delivery", slog.String("svix_id", msgID), slog.Any("error", err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// seen treats a delivery log outage as "not seen"; reprocessing is safe.
func (h *Handler) seen(ctx context.Context, msgID string) bool {
	if h.deliveries == nil {
		return false
	}
	ok, err := h.deliveries.Seen(ctx, deliverySource, msgID)
	if err != nil {
		h.logger.WarnContext(ctx, "delivery log unavailable", slog.Any("error", err))
		return false
	}
	return ok
}
