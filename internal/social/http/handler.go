package http

import (
	"net/http"

	"github.com/folioawards/folio-backend/internal/apperror"
	"github.com/folioawards/folio-backend/internal/auth"
	"github.com/folioawards/folio-backend/internal/social/service"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	follows *service.FollowService
}

func New(follows *service.FollowService) *Handler {
	return &Handler{follows: follows}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/follows/:targetUserId/toggle", auth.RequireUser(), h.Toggle)
}

func (h *Handler) Toggle(c *gin.Context) {
	res, err := h.follows.Toggle(c.Request.Context(), auth.UserID(c), c.Param("targetUserId"))
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"success": false, "message": apperror.PublicMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "isFollowing": res.IsFollowing})
}
