package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/folioawards/folio-backend/internal/api/http/middleware"
	"github.com/folioawards/folio-backend/internal/identity/domain"
	pdomain "github.com/folioawards/folio-backend/internal/profiles/domain"
)

type ProfileStore interface {
	Get(ctx context.Context, userID string) (*pdomain.Profile, error)
	UpsertFull(ctx context.Context, u pdomain.IdentityUpdate) error
	UpsertIdentity(ctx context.Context, u pdomain.IdentityUpdate) error
	Delete(ctx context.Context, userID string) error
}

type ClaimFinalizer interface {
	Finalize(ctx context.Context, userID string) error
}

type RetryQueue interface {
	Enqueue(ctx context.Context, userID string) error
}

type PathInvalidator interface {
	Invalidate(ctx context.Context, paths ...string) error
}

// Processor applies verified identity events to the profile store.
type Processor struct {
	profiles    ProfileStore
	claims      ClaimFinalizer
	retry       RetryQueue
	invalidator PathInvalidator
	logger      *slog.Logger
}

func NewProcessor(profiles ProfileStore, claims ClaimFinalizer, retry RetryQueue, invalidator PathInvalidator, logger *slog.Logger) *Processor {
	return &Processor{
		profiles:    profiles,
		claims:      claims,
		retry:       retry,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Handle applies one event. Returned errors mean nothing past the failing
// write was committed and the provider should redeliver.
func (p *Processor) Handle(ctx context.Context, evt domain.Event) error {
	switch e := evt.(type) {
	case domain.UserCreated:
		return p.userCreated(ctx, e.User)
	case domain.UserUpdated:
		return p.userUpdated(ctx, e.User)
	case domain.UserDeleted:
		return p.userDeleted(ctx, e.UserID)
	case domain.SessionCreated:
		p.logger.DebugContext(ctx, "session created", slog.String("user_id", e.UserID))
		return nil
	default:
		return fmt.Errorf("%w: %T", domain.ErrUnsupportedEvent, evt)
	}
}

func (p *Processor) userCreated(ctx context.Context, u domain.User) error {
	email, ok := u.PrimaryEmail()
	if !ok {
		return fmt.Errorf("user %s: %w", u.ID, domain.ErrNoPrimaryEmail)
	}

	upd := toUpdate(u, email)
	if err := p.profiles.UpsertFull(ctx, upd); err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", u.ID, err)
	}

	p.logger.InfoContext(ctx, "profile created",
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.String("user_id", u.ID),
		slog.Bool("is_unclaimed", upd.IsUnclaimed),
	)
	p.invalidate(ctx, profilePath(upd.Username))
	return nil
}

func (p *Processor) userUpdated(ctx context.Context, u domain.User) error {
	prev, err := p.profiles.Get(ctx, u.ID)
	if err != nil && !errors.Is(err, pdomain.ErrProfileNotFound) {
		return fmt.Errorf("failed to load profile %s: %w", u.ID, err)
	}

	// An update may carry no primary email match; keep the stored one.
	email, ok := u.PrimaryEmail()
	if !ok && prev != nil {
		email = prev.Email
	}

	upd := toUpdate(u, email)
	if err := p.profiles.UpsertIdentity(ctx, upd); err != nil {
		return fmt.Errorf("failed to update profile %s: %w", u.ID, err)
	}

	paths := []string{profilePath(upd.Username)}
	if prev != nil && prev.Username != upd.Username {
		paths = append(paths, profilePath(prev.Username))
	}
	p.invalidate(ctx, paths...)

	if claimCompleted(prev, u) {
		p.finalize(ctx, u.ID)
	}
	return nil
}

func (p *Processor) userDeleted(ctx context.Context, userID string) error {
	prev, err := p.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, pdomain.ErrProfileNotFound) {
		return fmt.Errorf("failed to load profile %s: %w", userID, err)
	}
	if err := p.profiles.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", userID, err)
	}
	p.logger.InfoContext(ctx, "profile deleted", slog.String("user_id", userID))
	if prev != nil {
		p.invalidate(ctx, profilePath(prev.Username))
	}
	return nil
}

// finalize never fails the event: the profile write is already committed.
func (p *Processor) finalize(ctx context.Context, userID string) {
	err := p.claims.Finalize(ctx, userID)
	if err == nil {
		return
	}

	p.logger.ErrorContext(ctx, "claim finalize failed, queued for retry",
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.String("user_id", userID),
		slog.Any("error", err),
	)
	if p.retry == nil {
		return
	}
	if qerr := p.retry.Enqueue(ctx, userID); qerr != nil {
		p.logger.ErrorContext(ctx, "failed to queue claim finalize",
			slog.String("user_id", userID),
			slog.Any("error", qerr),
		)
	}
}

func (p *Processor) invalidate(ctx context.Context, paths ...string) {
	if p.invalidator == nil {
		return
	}
	if err := p.invalidator.Invalidate(ctx, paths...); err != nil {
		p.logger.WarnContext(ctx, "path invalidation failed", slog.Any("paths", paths), slog.Any("error", err))
	}
}

// claimCompleted is true when a staff-provisioned profile just got its
// first password.
func claimCompleted(prev *pdomain.Profile, u domain.User) bool {
	return prev != nil && prev.IsUnclaimed && !prev.PasswordEnabled && u.PasswordEnabled
}

func toUpdate(u domain.User, email string) pdomain.IdentityUpdate {
	return pdomain.IdentityUpdate{
		UserID:          u.ID,
		Username:        u.UsernameOr(email),
		Email:           email,
		AvatarURL:       u.ImageURL,
		DisplayName:     u.DisplayName(),
		PasswordEnabled: u.PasswordEnabled,
		IsUnclaimed:     pdomain.MetadataFlag(u.PublicMetadata, "is_unclaimed"),
		PublicMetadata:  u.PublicMetadata,
	}
}

func profilePath(username string) string {
	return "/u/" + username
}
