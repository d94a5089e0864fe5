package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/folioawards/folio-backend/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSubject = errors.New("session token has no subject")

// TokenVerifier turns a bearer token into the caller's user id.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// JWKSVerifier validates identity provider session tokens against the
// provider's published signing keys.
type JWKSVerifier struct {
	keyfunc jwt.Keyfunc
	issuer  string
	methods []string
}

// NewJWKSVerifier fetches the key set once and refreshes it in the
// background until ctx is cancelled.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer string) (*JWKSVerifier, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to load jwks from %s: %w", jwksURL, err)
	}
	return newVerifier(k.Keyfunc, issuer, []string{"RS256", "ES256", "EdDSA"}), nil
}

func newVerifier(kf jwt.Keyfunc, issuer string, methods []string) *JWKSVerifier {
	return &JWKSVerifier{keyfunc: kf, issuer: issuer, methods: methods}
}

func (v *JWKSVerifier) Verify(_ context.Context, raw string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, v.keyfunc, opts...)
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}

// SessionMiddleware sets the caller id when a valid bearer token is present.
// Requests without a token pass through anonymous; routes that need a caller
// add auth.RequireUser.
func SessionMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		uid, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			c.Abort()
			return
		}

		c.Set(auth.CtxUserID, uid)
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
