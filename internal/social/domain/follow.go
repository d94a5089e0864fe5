package domain

import (
	"time"

	"github.com/folioawards/folio-backend/internal/apperror"
)

// Follow is a directed edge; its existence is the only state.
type Follow struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToggleResult reports the edge state after a toggle.
type ToggleResult struct {
	IsFollowing bool `json:"isFollowing"`
}

// Counts are the edge totals for one profile.
type Counts struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}

var (
	ErrSelfFollow     = apperror.ValidationFailed("targetUserId", "you cannot follow yourself")
	ErrNotSignedIn    = apperror.Unauthorized("sign in to follow creators")
	ErrTargetNotFound = apperror.NotFound("creator not found")
)
