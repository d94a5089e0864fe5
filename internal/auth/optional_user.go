package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// OptionalUser trusts the X-User-Id header as the caller id.
// Use this ONLY for development/testing.
func OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := strings.TrimSpace(c.GetHeader("X-User-Id")); uid != "" {
			c.Set(CtxUserID, uid)
		}
		c.Next()
	}
}
