package domain

import "github.com/folioawards/folio-backend/internal/apperror"

var (
	ErrProfileNotFound = apperror.NotFound("profile not found")
	ErrUsernameTaken   = apperror.Conflict("username", "username is already taken")
)
