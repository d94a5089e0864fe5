package http

import (
	"net/http"

	"github.com/folioawards/folio-backend/internal/apperror"
	"github.com/folioawards/folio-backend/internal/claims/service"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	claims *service.ClaimService
}

func New(claims *service.ClaimService) *Handler {
	return &Handler{claims: claims}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/claims/initiate", h.Initiate)
}

type initiateRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Initiate starts claiming a staff-provisioned profile.
func (h *Handler) Initiate(c *gin.Context) {
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	res, err := h.claims.Initiate(c.Request.Context(), req.Email, req.Username)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"success": false, "message": apperror.PublicMessage(err)})
		return
	}

	c.JSON(http.StatusOK, res)
}
