package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/folioawards/folio-backend/internal/profiles/domain"
	"github.com/folioawards/folio-backend/internal/storage/postgres"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `user_id, username, display_name, avatar_url, banner_url, email, location,
       website_url, bio, is_unclaimed, password_enabled, public_metadata, created_at, updated_at`

type ProfileRepository struct {
	db postgres.DBTX
}

func NewProfileRepository(db postgres.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves a profile by its identity-provider user id.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	q := `select ` + profileColumns + ` from profiles where user_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, q, userID))
}

// GetByUsername retrieves a profile by its (unique) username.
func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	q := `select ` + profileColumns + ` from profiles where username = $1`
	return r.scanOne(r.db.QueryRow(ctx, q, username))
}

// UpsertFull writes every provider-owned column. Used for user.created.
// is_unclaimed can only move from true to false on conflict.
func (r *ProfileRepository) UpsertFull(ctx context.Context, u domain.IdentityUpdate) error {
	const q = `
insert into profiles (user_id, username, display_name, avatar_url, email, is_unclaimed, password_enabled, public_metadata, updated_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, now())
on conflict (user_id) do update
set
  username = excluded.username,
  display_name = excluded.display_name,
  avatar_url = excluded.avatar_url,
  email = excluded.email,
  is_unclaimed = profiles.is_unclaimed and excluded.is_unclaimed,
  password_enabled = excluded.password_enabled,
  public_metadata = excluded.public_metadata,
  updated_at = now();
`
	return r.upsert(ctx, q, u)
}

// UpsertIdentity writes only identity fields and metadata on conflict, so
// display name, bio, location, website and banner stay as the user set them.
// Staff may re-mark a profile unclaimed while no password has been set on
// either side; clearing the flag is left to MarkClaimed.
func (r *ProfileRepository) UpsertIdentity(ctx context.Context, u domain.IdentityUpdate) error {
	const q = `
insert into profiles (user_id, username, display_name, avatar_url, email, is_unclaimed, password_enabled, public_metadata, updated_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, now())
on conflict (user_id) do update
set
  username = excluded.username,
  avatar_url = excluded.avatar_url,
  email = excluded.email,
  is_unclaimed = profiles.is_unclaimed
    or (excluded.is_unclaimed and not excluded.password_enabled and not profiles.password_enabled),
  password_enabled = excluded.password_enabled,
  public_metadata = excluded.public_metadata,
  updated_at = now();
`
	return r.upsert(ctx, q, u)
}

func (r *ProfileRepository) upsert(ctx context.Context, q string, u domain.IdentityUpdate) error {
	if u.UserID == "" {
		return fmt.Errorf("user_id required")
	}

	metadata := u.PublicMetadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal public metadata: %w", err)
	}

	_, err = r.db.Exec(ctx, q,
		u.UserID,
		u.Username,
		u.DisplayName,
		u.AvatarURL,
		u.Email,
		u.IsUnclaimed,
		u.PasswordEnabled,
		metadataJSON,
	)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("upsert profile %s: %w", u.UserID, domain.ErrUsernameTaken)
	}
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", u.UserID, err)
	}
	return nil
}

// MarkClaimed clears is_unclaimed. Calling it on an already claimed profile
// is a no-op; a missing profile returns ErrProfileNotFound.
func (r *ProfileRepository) MarkClaimed(ctx context.Context, userID string) error {
	const q = `
update profiles
set
  is_unclaimed = false,
  updated_at = case when is_unclaimed then now() else updated_at end
where user_id = $1;
`
	ct, err := r.db.Exec(ctx, q, userID)
	if err != nil {
		return fmt.Errorf("mark profile %s claimed: %w", userID, err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// Delete hard-deletes a profile. Dependent rows cascade.
func (r *ProfileRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `delete from profiles where user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete profile %s: %w", userID, err)
	}
	return nil
}

func (r *ProfileRepository) scanOne(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	var metadataJSON []byte

	err := row.Scan(
		&p.UserID,
		&p.Username,
		&p.DisplayName,
		&p.AvatarURL,
		&p.BannerURL,
		&p.Email,
		&p.Location,
		&p.WebsiteURL,
		&p.Bio,
		&p.IsUnclaimed,
		&p.PasswordEnabled,
		&metadataJSON,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	p.PublicMetadata = map[string]any{}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &p.PublicMetadata); err != nil {
			return nil, fmt.Errorf("decode public metadata for %s: %w", p.UserID, err)
		}
	}

	return &p, nil
}
