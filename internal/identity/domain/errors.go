package domain

import "errors"

var (
	ErrMalformedEvent   = errors.New("malformed identity event")
	ErrUnsupportedEvent = errors.New("unsupported identity event")
	ErrNoPrimaryEmail   = errors.New("primary email address not found in event")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMissingHeaders   = errors.New("missing webhook headers")
)
