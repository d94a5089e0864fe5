package bootstrap

import (
	"log/slog"

	"github.com/folioawards/folio-backend/config"
	awardrepo "github.com/folioawards/folio-backend/internal/awards/repository"
	awardsvc "github.com/folioawards/folio-backend/internal/awards/service"
	billingrepo "github.com/folioawards/folio-backend/internal/billing/repository"
	billingsvc "github.com/folioawards/folio-backend/internal/billing/service"
	"github.com/folioawards/folio-backend/internal/billing/stripeapi"
	claimsvc "github.com/folioawards/folio-backend/internal/claims/service"
	identityhttp "github.com/folioawards/folio-backend/internal/identity/http"
	identitysvc "github.com/folioawards/folio-backend/internal/identity/service"
	"github.com/folioawards/folio-backend/internal/jobs"
	profilerepo "github.com/folioawards/folio-backend/internal/profiles/repository"
	socialrepo "github.com/folioawards/folio-backend/internal/social/repository"
	socialsvc "github.com/folioawards/folio-backend/internal/social/service"
	"github.com/folioawards/folio-backend/internal/storage/postgres"
	"github.com/folioawards/folio-backend/internal/storage/redisstore"
	"github.com/redis/go-redis/v9"
)

// Services holds the process-wide components, built once at start.
type Services struct {
	Profiles     *profilerepo.ProfileRepository
	Claims       *claimsvc.ClaimService
	Identity     *identitysvc.Processor
	Billing      *billingsvc.Service
	Follows      *socialsvc.FollowService
	Awards       *awardsvc.AwardService
	Deliveries   *redisstore.DeliveryLog
	FinalizeQ    *redisstore.FinalizeQueue
	ClaimSweeper *jobs.ClaimSweeper
}

// NewServices wires repositories and services. provider may be nil, in
// which case the Stripe API client is built from cfg.
func NewServices(cfg *config.Config, logger *slog.Logger, db postgres.DBTX, rdb *redis.Client, provider billingsvc.Provider) *Services {
	profiles := profilerepo.NewProfileRepository(db)
	invalidator := redisstore.NewInvalidator(rdb)
	deliveries := redisstore.NewDeliveryLog(rdb, cfg.Redis.DeliveryTTL)
	finalizeQ := redisstore.NewFinalizeQueue(rdb)

	if provider == nil {
		provider = stripeapi.NewProvider(cfg.Billing.SecretKey, cfg.Billing.APIRateLimit, cfg.Billing.APIBurst)
	}

	resetter := identityhttp.NewResetClient(cfg.Identity.ResetURL, cfg.Identity.APIKey, cfg.Identity.Timeout)
	claims := claimsvc.NewClaimService(profiles, resetter, logger.With(slog.String("component", "claims")))

	return &Services{
		Profiles: profiles,
		Claims:   claims,
		Identity: identitysvc.NewProcessor(profiles, claims, finalizeQ, invalidator,
			logger.With(slog.String("component", "identity"))),
		Billing: billingsvc.NewService(billingrepo.NewSubscriptionRepository(db), provider,
			cfg.Billing.CustomerUserIDKey, logger.With(slog.String("component", "billing"))),
		Follows: socialsvc.NewFollowService(socialrepo.NewFollowRepository(db), profiles, invalidator,
			logger.With(slog.String("component", "social"))),
		Awards: awardsvc.NewAwardService(awardrepo.NewAwardRepository(db), profiles, invalidator,
			awardsvc.Config{AdminRole: cfg.Auth.AdminRole}, logger.With(slog.String("component", "awards"))),
		Deliveries:   deliveries,
		FinalizeQ:    finalizeQ,
		ClaimSweeper: jobs.NewClaimSweeper(finalizeQ, claims, logger.With(slog.String("component", "jobs"))),
	}
}
