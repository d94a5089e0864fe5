package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxUserID holds the identity provider user id of the caller.
const CtxUserID = "user_id"

// UserID extracts the caller's user id set by the session middleware.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// RequireUser aborts with 401 when no session was established.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
