package domain

import "errors"

var (
	ErrInvalidSignature         = errors.New("invalid billing webhook signature")
	ErrMalformedObject          = errors.New("malformed billing event object")
	ErrUnattributedSubscription = errors.New("customer metadata has no user id")
	ErrUnknownUser              = errors.New("subscription references an unknown user")
)
