package domain

import "time"

// Profile is the canonical user row. UserID is the identity provider's id.
type Profile struct {
	UserID          string         `json:"user_id"`
	Username        string         `json:"username"`
	DisplayName     string         `json:"display_name"`
	AvatarURL       string         `json:"avatar_url"`
	BannerURL       string         `json:"banner_url"`
	Email           string         `json:"email"`
	Location        string         `json:"location"`
	WebsiteURL      string         `json:"website_url"`
	Bio             string         `json:"bio"`
	IsUnclaimed     bool           `json:"is_unclaimed"`
	PasswordEnabled bool           `json:"password_enabled"`
	PublicMetadata  map[string]any `json:"public_metadata"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// IdentityUpdate carries the provider-owned subset of a profile. Upserting it
// must leave locally customized fields untouched; DisplayName is only used
// when the row does not exist yet.
type IdentityUpdate struct {
	UserID          string
	Username        string
	Email           string
	AvatarURL       string
	DisplayName     string
	PasswordEnabled bool
	IsUnclaimed     bool
	PublicMetadata  map[string]any
}

// HasRole reports whether public_metadata.role equals role.
func (p *Profile) HasRole(role string) bool {
	if p == nil || role == "" {
		return false
	}
	v, ok := p.PublicMetadata["role"].(string)
	return ok && v == role
}

// MetadataFlag reads a boolean flag from public metadata, tolerating the
// string forms some staff tooling writes.
func MetadataFlag(md map[string]any, key string) bool {
	switch v := md[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
