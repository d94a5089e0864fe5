package domain

import "github.com/folioawards/folio-backend/internal/apperror"

var (
	ErrProjectRequired = apperror.ValidationFailed("projectId", "project id is required")
	ErrInvalidType     = apperror.ValidationFailed("awardType", "award type must be one of otd, otm, oty, honorable")
	ErrDateRequired    = apperror.ValidationFailed("awardedAt", "award date is required")
	ErrDateInPast      = apperror.ValidationFailed("awardedAt", "award date cannot be in the past")
	ErrAlreadyAwarded  = apperror.Conflict("awardType", "this project already holds that award")
	ErrNotSignedIn     = apperror.Unauthorized("sign in to manage awards")
	ErrNotCurator      = apperror.Forbidden("only curators can manage awards")
)
