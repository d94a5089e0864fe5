package http

import (
	"context"
	"net/http"

	"github.com/folioawards/folio-backend/internal/apperror"
	"github.com/folioawards/folio-backend/internal/auth"
	claimsvc "github.com/folioawards/folio-backend/internal/claims/service"
	pdomain "github.com/folioawards/folio-backend/internal/profiles/domain"
	sdomain "github.com/folioawards/folio-backend/internal/social/domain"
	"github.com/gin-gonic/gin"
)

type ProfileReader interface {
	Get(ctx context.Context, userID string) (*pdomain.Profile, error)
}

type FollowCounter interface {
	Counts(ctx context.Context, userID string) (*sdomain.Counts, error)
}

type Handler struct {
	profiles ProfileReader
	follows  FollowCounter
}

func New(profiles ProfileReader, follows FollowCounter) *Handler {
	return &Handler{profiles: profiles, follows: follows}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.GetProfile)
}

// GetProfile returns the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not authenticated"})
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), uid)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"success": false, "message": apperror.PublicMessage(err)})
		return
	}

	counts, err := h.follows.Counts(c.Request.Context(), uid)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"success": false, "message": apperror.PublicMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"profile":    profile,
		"claimState": claimsvc.StateOf(profile),
		"follows":    counts,
	})
}
