package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/folioawards/folio-backend/internal/api/http/middleware"
	pdomain "github.com/folioawards/folio-backend/internal/profiles/domain"
	"github.com/folioawards/folio-backend/internal/social/domain"
)

type FollowStore interface {
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	Insert(ctx context.Context, followerID, followingID string) error
	Delete(ctx context.Context, followerID, followingID string) error
	Counts(ctx context.Context, userID string) (followers, following int, err error)
}

type ProfileReader interface {
	Get(ctx context.Context, userID string) (*pdomain.Profile, error)
}

type PathInvalidator interface {
	Invalidate(ctx context.Context, paths ...string) error
}

type FollowService struct {
	follows     FollowStore
	profiles    ProfileReader
	invalidator PathInvalidator
	logger      *slog.Logger
}

func NewFollowService(follows FollowStore, profiles ProfileReader, invalidator PathInvalidator, logger *slog.Logger) *FollowService {
	return &FollowService{
		follows:     follows,
		profiles:    profiles,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Toggle flips the caller's follow of target. Two concurrent toggles may both
// observe the same prior state; the store tolerates either interleaving.
func (s *FollowService) Toggle(ctx context.Context, currentUserID, targetUserID string) (*domain.ToggleResult, error) {
	currentUserID = strings.TrimSpace(currentUserID)
	targetUserID = strings.TrimSpace(targetUserID)
	if currentUserID == "" {
		return nil, domain.ErrNotSignedIn
	}
	if currentUserID == targetUserID {
		return nil, domain.ErrSelfFollow
	}

	target, err := s.profiles.Get(ctx, targetUserID)
	if errors.Is(err, pdomain.ErrProfileNotFound) {
		return nil, domain.ErrTargetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load target %s: %w", targetUserID, err)
	}

	following, err := s.follows.Exists(ctx, currentUserID, targetUserID)
	if err != nil {
		return nil, err
	}

	if following {
		err = s.follows.Delete(ctx, currentUserID, targetUserID)
	} else {
		err = s.follows.Insert(ctx, currentUserID, targetUserID)
	}
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "follow toggled",
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.String("follower_id", currentUserID),
		slog.String("following_id", targetUserID),
		slog.Bool("is_following", !following),
	)
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, "/u/"+target.Username); err != nil {
			s.logger.WarnContext(ctx, "path invalidation failed", slog.Any("error", err))
		}
	}

	return &domain.ToggleResult{IsFollowing: !following}, nil
}

// Counts returns the follower and following totals shown on a profile.
func (s *FollowService) Counts(ctx context.Context, userID string) (*domain.Counts, error) {
	followers, following, err := s.follows.Counts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Counts{Followers: followers, Following: following}, nil
}
