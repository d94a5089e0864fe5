package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/folioawards/folio-backend/config"
	httpapi "github.com/folioawards/folio-backend/internal/api/http"
	"github.com/folioawards/folio-backend/internal/api/http/middleware"
	"github.com/folioawards/folio-backend/internal/auth"
	authhttp "github.com/folioawards/folio-backend/internal/auth/http"
	authmw "github.com/folioawards/folio-backend/internal/auth/middleware"
	awardhttp "github.com/folioawards/folio-backend/internal/awards/http"
	billinghttp "github.com/folioawards/folio-backend/internal/billing/http"
	"github.com/folioawards/folio-backend/internal/billing/stripeapi"
	claimhttp "github.com/folioawards/folio-backend/internal/claims/http"
	identityhttp "github.com/folioawards/folio-backend/internal/identity/http"
	socialhttp "github.com/folioawards/folio-backend/internal/social/http"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	ServiceName string
	Config      *config.Config
	Logger      *slog.Logger
	DB          httpapi.Pinger
	Redis       *redis.Client
	Services    *Services
	// Session overrides the session middleware derived from Config.Auth.
	Session gin.HandlerFunc
}

func BuildRouter(ctx context.Context, dep RouterDeps) (*gin.Engine, error) {
	cfg := dep.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var redisPinger httpapi.Pinger
	if dep.Redis != nil {
		redisPinger = httpapi.PingFunc(func(ctx context.Context) error { return dep.Redis.Ping(ctx).Err() })
	}
	httpapi.NewHealthHandler(dep.ServiceName, cfg.App.Version, dep.DB, redisPinger).RegisterRoutes(r)

	svc := dep.Services

	identityVerifier, err := identityhttp.NewSvixVerifier(cfg.Identity.WebhookSecret)
	if err != nil {
		return nil, err
	}
	billingHandler := billinghttp.New(
		stripeapi.NewVerifier(cfg.Billing.WebhookSecret, cfg.Billing.WebhookTolerance),
		svc.Billing, svc.Billing, svc.Deliveries, dep.Logger,
	)

	webhooks := r.Group("/api/webhooks")
	identityhttp.New(identityVerifier, svc.Identity, svc.Deliveries, dep.Logger).Register(webhooks)
	billingHandler.RegisterWebhooks(webhooks)

	session := dep.Session
	if session == nil {
		session, err = sessionMiddleware(ctx, cfg, dep.Logger)
		if err != nil {
			return nil, err
		}
	}

	api := r.Group("/api/v1")
	api.Use(session)

	claimhttp.New(svc.Claims).Register(api)
	authhttp.New(svc.Profiles, svc.Follows).Register(api)
	billingHandler.Register(api)
	socialhttp.New(svc.Follows).Register(api)
	awardhttp.New(svc.Awards).Register(api)

	return r, nil
}

func sessionMiddleware(ctx context.Context, cfg *config.Config, logger *slog.Logger) (gin.HandlerFunc, error) {
	if cfg.Auth.JWKSURL != "" {
		verifier, err := authmw.NewJWKSVerifier(ctx, cfg.Auth.JWKSURL, cfg.Auth.Issuer)
		if err != nil {
			return nil, err
		}
		return authmw.SessionMiddleware(verifier), nil
	}
	if cfg.IsProduction() {
		return nil, fmt.Errorf("AUTH_JWKS_URL is required in production")
	}
	logger.Warn("no AUTH_JWKS_URL configured, trusting X-User-Id header")
	return auth.OptionalUser(), nil
}
