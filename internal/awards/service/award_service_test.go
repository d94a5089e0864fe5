package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/folioawards/folio-backend/internal/apperror"
	"github.com/folioawards/folio-backend/internal/awards/domain"
	pdomain "github.com/folioawards/folio-backend/internal/profiles/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type key struct {
	project string
	t       domain.Type
}

type memAwards struct {
	rows      map[key]domain.Award
	insertErr error
}

func (m *memAwards) Insert(_ context.Context, projectID string, t domain.Type, at time.Time) (*domain.Award, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	k := key{projectID, t}
	if _, ok := m.rows[k]; ok {
		return nil, domain.ErrAlreadyAwarded
	}
	a := domain.Award{ProjectID: projectID, Type: t, AwardedAt: at}
	m.rows[k] = a
	return &a, nil
}

func (m *memAwards) Delete(_ context.Context, projectID string, t domain.Type) (*domain.Award, error) {
	k := key{projectID, t}
	a, ok := m.rows[k]
	if !ok {
		return nil, nil
	}
	delete(m.rows, k)
	return &a, nil
}

func (m *memAwards) ListByProject(_ context.Context, projectID string) ([]domain.Award, error) {
	var out []domain.Award
	for k, a := range m.rows {
		if k.project == projectID {
			out = append(out, a)
		}
	}
	return out, nil
}

// mutableProfiles lets a test revoke the role between calls.
type mutableProfiles map[string]*pdomain.Profile

func (m mutableProfiles) Get(_ context.Context, id string) (*pdomain.Profile, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, pdomain.ErrProfileNotFound
}

var now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func newService() (*AwardService, *memAwards, mutableProfiles) {
	awards := &memAwards{rows: map[key]domain.Award{}}
	profiles := mutableProfiles{
		"curator": {UserID: "curator", PublicMetadata: map[string]any{"role": "admin"}},
		"member":  {UserID: "member"},
	}
	svc := NewAwardService(awards, profiles, nil, Config{AdminRole: "admin", Now: func() time.Time { return now }},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, awards, profiles
}

func TestAwardService_Give(t *testing.T) {
	ctx := context.Background()

	t.Run("today for otd", func(t *testing.T) {
		svc, awards, _ := newService()
		a, err := svc.Give(ctx, "curator", "p1", domain.TypeOfTheDay, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), a.AwardedAt)
		assert.Len(t, awards.rows, 1)
	})

	t.Run("past year rejected for oty", func(t *testing.T) {
		svc, awards, _ := newService()
		_, err := svc.Give(ctx, "curator", "p1", domain.TypeOfTheYear, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, domain.ErrDateInPast)
		assert.Empty(t, awards.rows)
	})

	t.Run("existing pair conflicts without mutation", func(t *testing.T) {
		svc, awards, _ := newService()
		_, err := svc.Give(ctx, "curator", "p1", domain.TypeOfTheMonth, now)
		require.NoError(t, err)
		before := awards.rows[key{"p1", domain.TypeOfTheMonth}]

		_, err = svc.Give(ctx, "curator", "p1", domain.TypeOfTheMonth, now.AddDate(0, 2, 0))
		assert.ErrorIs(t, err, domain.ErrAlreadyAwarded)
		assert.Equal(t, 409, apperror.HTTPStatus(err))
		assert.Equal(t, before, awards.rows[key{"p1", domain.TypeOfTheMonth}])
	})

	t.Run("role checked on every call", func(t *testing.T) {
		svc, _, profiles := newService()
		_, err := svc.Give(ctx, "curator", "p1", domain.TypeHonorable, now)
		require.NoError(t, err)

		profiles["curator"].PublicMetadata = map[string]any{"role": "member"}
		_, err = svc.Give(ctx, "curator", "p2", domain.TypeHonorable, now)
		assert.ErrorIs(t, err, domain.ErrNotCurator)
		assert.Equal(t, 403, apperror.HTTPStatus(err))
	})

	t.Run("non curator and anonymous", func(t *testing.T) {
		svc, _, _ := newService()
		_, err := svc.Give(ctx, "member", "p1", domain.TypeOfTheDay, now)
		assert.ErrorIs(t, err, domain.ErrNotCurator)

		_, err = svc.Give(ctx, "", "p1", domain.TypeOfTheDay, now)
		assert.ErrorIs(t, err, domain.ErrNotSignedIn)

		_, err = svc.Give(ctx, "stranger", "p1", domain.TypeOfTheDay, now)
		assert.ErrorIs(t, err, domain.ErrNotCurator)
	})

	t.Run("invalid type", func(t *testing.T) {
		svc, _, _ := newService()
		_, err := svc.Give(ctx, "curator", "p1", "best", now)
		assert.ErrorIs(t, err, domain.ErrInvalidType)
	})
}

func TestAwardService_Remove(t *testing.T) {
	ctx := context.Background()
	svc, awards, _ := newService()
	_, err := svc.Give(ctx, "curator", "p1", domain.TypeOfTheDay, now)
	require.NoError(t, err)

	removed, err := svc.Remove(ctx, "curator", "p1", domain.TypeOfTheDay)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, domain.TypeOfTheDay, removed.Type)

	removed, err = svc.Remove(ctx, "curator", "p1", domain.TypeOfTheDay)
	require.NoError(t, err)
	assert.Nil(t, removed)
	assert.Empty(t, awards.rows)

	_, err = svc.Remove(ctx, "member", "p1", domain.TypeOfTheDay)
	assert.ErrorIs(t, err, domain.ErrNotCurator)
}

func TestAwardService_UpdateDate(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the date", func(t *testing.T) {
		svc, awards, _ := newService()
		_, err := svc.Give(ctx, "curator", "p1", domain.TypeOfTheDay, now)
		require.NoError(t, err)

		a, err := svc.UpdateDate(ctx, "curator", "p1", domain.TypeOfTheDay, now.AddDate(0, 0, 3))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC), a.AwardedAt)
		assert.Len(t, awards.rows, 1)
	})

	t.Run("bad date keeps the existing award", func(t *testing.T) {
		svc, awards, _ := newService()
		_, err := svc.Give(ctx, "curator", "p1", domain.TypeOfTheDay, now)
		require.NoError(t, err)

		_, err = svc.UpdateDate(ctx, "curator", "p1", domain.TypeOfTheDay, now.AddDate(0, 0, -3))
		assert.ErrorIs(t, err, domain.ErrDateInPast)
		assert.Len(t, awards.rows, 1)
	})

	t.Run("failed give leaves the award removed", func(t *testing.T) {
		svc, awards, _ := newService()
		_, err := svc.Give(ctx, "curator", "p1", domain.TypeOfTheDay, now)
		require.NoError(t, err)

		awards.insertErr = errors.New("db down")
		_, err = svc.UpdateDate(ctx, "curator", "p1", domain.TypeOfTheDay, now.AddDate(0, 0, 1))
		assert.Error(t, err)
		assert.Empty(t, awards.rows)
	})
}

func TestAwardService_List(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()
	_, err := svc.Give(ctx, "curator", "p1", domain.TypeOfTheYear, now)
	require.NoError(t, err)

	got, err := svc.List(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.List(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrProjectRequired)
}
