package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/folioawards/folio-backend/internal/api/http/middleware"
	"github.com/folioawards/folio-backend/internal/awards/domain"
	pdomain "github.com/folioawards/folio-backend/internal/profiles/domain"
)

type AwardStore interface {
	Insert(ctx context.Context, projectID string, t domain.Type, awardedAt time.Time) (*domain.Award, error)
	Delete(ctx context.Context, projectID string, t domain.Type) (*domain.Award, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Award, error)
}

type ProfileReader interface {
	Get(ctx context.Context, userID string) (*pdomain.Profile, error)
}

type PathInvalidator interface {
	Invalidate(ctx context.Context, paths ...string) error
}

type Config struct {
	AdminRole string
	Now       func() time.Time
}

type AwardService struct {
	awards      AwardStore
	profiles    ProfileReader
	invalidator PathInvalidator
	adminRole   string
	now         func() time.Time
	logger      *slog.Logger
}

func NewAwardService(awards AwardStore, profiles ProfileReader, invalidator PathInvalidator, cfg Config, logger *slog.Logger) *AwardService {
	if cfg.AdminRole == "" {
		cfg.AdminRole = "admin"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AwardService{
		awards:      awards,
		profiles:    profiles,
		invalidator: invalidator,
		adminRole:   cfg.AdminRole,
		now:         cfg.Now,
		logger:      logger,
	}
}

// authorize re-reads the caller's role on every command.
func (s *AwardService) authorize(ctx context.Context, callerID string) error {
	if strings.TrimSpace(callerID) == "" {
		return domain.ErrNotSignedIn
	}
	caller, err := s.profiles.Get(ctx, callerID)
	if errors.Is(err, pdomain.ErrProfileNotFound) {
		return domain.ErrNotCurator
	}
	if err != nil {
		return fmt.Errorf("load caller %s: %w", callerID, err)
	}
	if !caller.HasRole(s.adminRole) {
		return domain.ErrNotCurator
	}
	return nil
}

func (s *AwardService) Give(ctx context.Context, callerID, projectID string, t domain.Type, awardedAt time.Time) (*domain.Award, error) {
	if err := s.authorize(ctx, callerID); err != nil {
		return nil, err
	}
	return s.give(ctx, callerID, projectID, t, awardedAt)
}

func (s *AwardService) give(ctx context.Context, callerID, projectID string, t domain.Type, awardedAt time.Time) (*domain.Award, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, domain.ErrProjectRequired
	}

	day, err := domain.Normalize(t, awardedAt, s.now())
	if err != nil {
		return nil, err
	}

	award, err := s.awards.Insert(ctx, projectID, t, day)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "award given",
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.String("curator_id", callerID),
		slog.String("project_id", projectID),
		slog.String("award_type", string(t)),
		slog.Time("awarded_at", day),
	)
	s.invalidate(ctx, projectID)
	return award, nil
}

// Remove returns the deleted award, or nil when the project did not hold it.
func (s *AwardService) Remove(ctx context.Context, callerID, projectID string, t domain.Type) (*domain.Award, error) {
	if err := s.authorize(ctx, callerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(projectID) == "" {
		return nil, domain.ErrProjectRequired
	}
	if !t.Valid() {
		return nil, domain.ErrInvalidType
	}

	removed, err := s.awards.Delete(ctx, projectID, t)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "award removed",
		slog.String("curator_id", callerID),
		slog.String("project_id", projectID),
		slog.String("award_type", string(t)),
		slog.Bool("existed", removed != nil),
	)
	s.invalidate(ctx, projectID)
	return removed, nil
}

// UpdateDate is remove then give, not atomic: a failed give leaves the award
// removed.
func (s *AwardService) UpdateDate(ctx context.Context, callerID, projectID string, t domain.Type, awardedAt time.Time) (*domain.Award, error) {
	if err := s.authorize(ctx, callerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(projectID) == "" {
		return nil, domain.ErrProjectRequired
	}
	// a bad date keeps the old award
	if _, err := domain.Normalize(t, awardedAt, s.now()); err != nil {
		return nil, err
	}
	if _, err := s.awards.Delete(ctx, projectID, t); err != nil {
		return nil, err
	}
	return s.give(ctx, callerID, projectID, t, awardedAt)
}

func (s *AwardService) List(ctx context.Context, projectID string) ([]domain.Award, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, domain.ErrProjectRequired
	}
	return s.awards.ListByProject(ctx, projectID)
}

func (s *AwardService) invalidate(ctx context.Context, projectID string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, "/projects/"+projectID, "/awards"); err != nil {
		s.logger.WarnContext(ctx, "path invalidation failed", slog.Any("error", err))
	}
}
