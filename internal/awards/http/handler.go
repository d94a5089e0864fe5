package http

import (
	"net/http"
	"time"

	"github.com/folioawards/folio-backend/internal/apperror"
	"github.com/folioawards/folio-backend/internal/auth"
	"github.com/folioawards/folio-backend/internal/awards/domain"
	"github.com/folioawards/folio-backend/internal/awards/service"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	awards *service.AwardService
}

func New(awards *service.AwardService) *Handler {
	return &Handler{awards: awards}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/projects/:projectId/awards")
	g.GET("", h.List)
	g.POST("", auth.RequireUser(), h.Give)
	g.PUT("/:awardType", auth.RequireUser(), h.UpdateDate)
	g.DELETE("/:awardType", auth.RequireUser(), h.Remove)
}

type giveRequest struct {
	AwardType string `json:"awardType"`
	AwardedAt string `json:"awardedAt"`
}

type dateRequest struct {
	AwardedAt string `json:"awardedAt"`
}

func (h *Handler) Give(c *gin.Context) {
	var req giveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	at, err := parseDate(req.AwardedAt)
	if err != nil {
		respondError(c, err)
		return
	}

	award, err := h.awards.Give(c.Request.Context(), auth.UserID(c), c.Param("projectId"), domain.Type(req.AwardType), at)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "award": award})
}

func (h *Handler) UpdateDate(c *gin.Context) {
	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	at, err := parseDate(req.AwardedAt)
	if err != nil {
		respondError(c, err)
		return
	}

	award, err := h.awards.UpdateDate(c.Request.Context(), auth.UserID(c), c.Param("projectId"), domain.Type(c.Param("awardType")), at)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "award": award})
}

func (h *Handler) Remove(c *gin.Context) {
	removed, err := h.awards.Remove(c.Request.Context(), auth.UserID(c), c.Param("projectId"), domain.Type(c.Param("awardType")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "award": removed})
}

func (h *Handler) List(c *gin.Context) {
	awards, err := h.awards.List(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "awards": awards})
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. A bare date is
// a UTC calendar day; award periods are UTC days, months and years whatever
// the curator's zone.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, domain.ErrDateRequired
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed("awardedAt", "award date must be YYYY-MM-DD or RFC 3339")
	}
	return t, nil
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperror.HTTPStatus(err), gin.H{"success": false, "message": apperror.PublicMessage(err)})
}
