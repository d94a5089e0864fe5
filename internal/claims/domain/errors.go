package domain

import "github.com/folioawards/folio-backend/internal/apperror"

var (
	ErrEmailRequired    = apperror.ValidationFailed("email", "email is required")
	ErrUsernameRequired = apperror.ValidationFailed("username", "username is required")
	ErrEmailMismatch    = apperror.ValidationFailed("email", "the email does not match this profile")
	ErrAlreadyClaimed   = apperror.ValidationFailed("username", "this profile has already been claimed")
)
