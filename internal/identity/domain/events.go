package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type EventType string

const (
	EventUserCreated    EventType = "user.created"
	EventUserUpdated    EventType = "user.updated"
	EventUserDeleted    EventType = "user.deleted"
	EventSessionCreated EventType = "session.created"
)

// Event is one decoded identity webhook. Exactly one concrete type exists per
// supported EventType.
type Event interface {
	Type() EventType
}

type UserCreated struct{ User User }
type UserUpdated struct{ User User }
type UserDeleted struct{ UserID string }
type SessionCreated struct {
	SessionID string
	UserID    string
}

func (UserCreated) Type() EventType    { return EventUserCreated }
func (UserUpdated) Type() EventType    { return EventUserUpdated }
func (UserDeleted) Type() EventType    { return EventUserDeleted }
func (SessionCreated) Type() EventType { return EventSessionCreated }

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// User is the provider's user object as delivered in user.* events.
type User struct {
	ID                    string         `json:"id"`
	Username              *string        `json:"username"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	ImageURL              string         `json:"image_url"`
	PrimaryEmailAddressID *string        `json:"primary_email_address_id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PasswordEnabled       bool           `json:"password_enabled"`
	PublicMetadata        map[string]any `json:"public_metadata"`
}

type envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode parses a verified webhook body. Unknown types return
// ErrUnsupportedEvent; known types with missing required fields return
// ErrMalformedEvent.
func Decode(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: missing data for %s", ErrMalformedEvent, env.Type)
	}

	switch env.Type {
	case EventUserCreated, EventUserUpdated:
		var u User
		if err := json.Unmarshal(env.Data, &u); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Type, err)
		}
		if strings.TrimSpace(u.ID) == "" {
			return nil, fmt.Errorf("%w: %s without user id", ErrMalformedEvent, env.Type)
		}
		if env.Type == EventUserCreated {
			return UserCreated{User: u}, nil
		}
		return UserUpdated{User: u}, nil

	case EventUserDeleted:
		var d struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Type, err)
		}
		if d.ID == "" {
			return nil, fmt.Errorf("%w: %s without user id", ErrMalformedEvent, env.Type)
		}
		return UserDeleted{UserID: d.ID}, nil

	case EventSessionCreated:
		var s struct {
			ID     string `json:"id"`
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(env.Data, &s); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Type, err)
		}
		return SessionCreated{SessionID: s.ID, UserID: s.UserID}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, env.Type)
}

// PrimaryEmail returns the address whose id matches primary_email_address_id.
func (u User) PrimaryEmail() (string, bool) {
	if u.PrimaryEmailAddressID == nil {
		return "", false
	}
	for _, e := range u.EmailAddresses {
		if e.ID == *u.PrimaryEmailAddressID {
			return e.EmailAddress, true
		}
	}
	return "", false
}

// DisplayName joins first and last name, falling back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.Join([]string{deref(u.FirstName), deref(u.LastName)}, " "))
	if name != "" {
		return name
	}
	return deref(u.Username)
}

// UsernameOr returns the username, or one derived from the email local part
// and the user id when the provider has none (email-only sign ups).
func (u User) UsernameOr(email string) string {
	if name := strings.TrimSpace(deref(u.Username)); name != "" {
		return name
	}
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	suffix := u.ID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	if local == "" {
		return "user_" + strings.ToLower(suffix)
	}
	return strings.ToLower(local) + "_" + strings.ToLower(suffix)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
