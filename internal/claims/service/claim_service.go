package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/folioawards/folio-backend/internal/api/http/middleware"
	"github.com/folioawards/folio-backend/internal/claims/domain"
	pdomain "github.com/folioawards/folio-backend/internal/profiles/domain"
)

type ProfileStore interface {
	GetByUsername(ctx context.Context, username string) (*pdomain.Profile, error)
	MarkClaimed(ctx context.Context, userID string) error
}

// CredentialResetter starts the identity provider's reset-credential flow,
// which emails the verification code to the address on file.
type CredentialResetter interface {
	StartCredentialReset(ctx context.Context, email string) error
}

// ClaimService drives unclaimed -> claim initiated -> claimed. Only the final
// transition is persisted.
type ClaimService struct {
	profiles ProfileStore
	resetter CredentialResetter
	logger   *slog.Logger
}

func NewClaimService(profiles ProfileStore, resetter CredentialResetter, logger *slog.Logger) *ClaimService {
	return &ClaimService{
		profiles: profiles,
		resetter: resetter,
		logger:   logger,
	}
}

// Initiate checks the email against the staff-provisioned profile and hands
// off to the provider. State only advances when the provider later reports
// the password was set.
func (s *ClaimService) Initiate(ctx context.Context, email, username string) (*domain.Result, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" {
		return nil, domain.ErrEmailRequired
	}
	if username == "" {
		return nil, domain.ErrUsernameRequired
	}

	profile, err := s.profiles.GetByUsername(ctx, username)
	if errors.Is(err, pdomain.ErrProfileNotFound) {
		// same answer as a mismatch so usernames cannot be probed
		return nil, domain.ErrEmailMismatch
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", username, err)
	}

	if !strings.EqualFold(strings.TrimSpace(profile.Email), email) {
		return nil, domain.ErrEmailMismatch
	}
	if !profile.IsUnclaimed {
		return nil, domain.ErrAlreadyClaimed
	}

	if err := s.resetter.StartCredentialReset(ctx, profile.Email); err != nil {
		return nil, fmt.Errorf("start credential reset for %s: %w", profile.UserID, err)
	}

	s.logger.InfoContext(ctx, "claim initiated",
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.String("user_id", profile.UserID),
	)

	return &domain.Result{
		Success: true,
		Message: "Check your email for a verification code to finish claiming this profile.",
	}, nil
}

// Finalize marks the profile claimed. It is idempotent.
func (s *ClaimService) Finalize(ctx context.Context, userID string) error {
	if err := s.profiles.MarkClaimed(ctx, userID); err != nil {
		return fmt.Errorf("finalize claim for %s: %w", userID, err)
	}
	s.logger.InfoContext(ctx, "claim finalized", slog.String("user_id", userID))
	return nil
}

// StateOf derives the claim state of a stored profile.
func StateOf(p *pdomain.Profile) domain.State {
	if p.IsUnclaimed {
		return domain.StateUnclaimed
	}
	return domain.StateClaimed
}
