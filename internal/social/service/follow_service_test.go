package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/folioawards/folio-backend/internal/apperror"
	pdomain "github.com/folioawards/folio-backend/internal/profiles/domain"
	"github.com/folioawards/folio-backend/internal/social/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type edge struct{ from, to string }

type memFollows struct {
	edges   map[edge]bool
	readErr error
}

func (m *memFollows) Exists(_ context.Context, a, b string) (bool, error) {
	if m.readErr != nil {
		return false, m.readErr
	}
	return m.edges[edge{a, b}], nil
}

func (m *memFollows) Insert(_ context.Context, a, b string) error {
	m.edges[edge{a, b}] = true
	return nil
}

func (m *memFollows) Delete(_ context.Context, a, b string) error {
	delete(m.edges, edge{a, b})
	return nil
}

func (m *memFollows) Counts(_ context.Context, id string) (followers, following int, err error) {
	if m.readErr != nil {
		return 0, 0, m.readErr
	}
	for e := range m.edges {
		if e.to == id {
			followers++
		}
		if e.from == id {
			following++
		}
	}
	return followers, following, nil
}

type stubProfiles map[string]*pdomain.Profile

func (s stubProfiles) Get(_ context.Context, id string) (*pdomain.Profile, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, pdomain.ErrProfileNotFound
}

type recordingInvalidator struct{ paths []string }

func (r *recordingInvalidator) Invalidate(_ context.Context, paths ...string) error {
	r.paths = append(r.paths, paths...)
	return nil
}

func newService() (*FollowService, *memFollows, *recordingInvalidator) {
	follows := &memFollows{edges: map[edge]bool{}}
	inv := &recordingInvalidator{}
	profiles := stubProfiles{
		"a": {UserID: "a", Username: "alice"},
		"b": {UserID: "b", Username: "bob"},
	}
	return NewFollowService(follows, profiles, inv, slog.New(slog.NewTextHandler(io.Discard, nil))), follows, inv
}

func TestFollowService_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("sequential toggles flip state", func(t *testing.T) {
		svc, follows, inv := newService()

		res, err := svc.Toggle(ctx, "a", "b")
		require.NoError(t, err)
		assert.True(t, res.IsFollowing)
		assert.True(t, follows.edges[edge{"a", "b"}])

		res, err = svc.Toggle(ctx, "a", "b")
		require.NoError(t, err)
		assert.False(t, res.IsFollowing)
		assert.Empty(t, follows.edges)

		assert.Equal(t, []string{"/u/bob", "/u/bob"}, inv.paths)
	})

	t.Run("self follow rejected", func(t *testing.T) {
		svc, follows, _ := newService()
		_, err := svc.Toggle(ctx, "a", "a")
		assert.ErrorIs(t, err, domain.ErrSelfFollow)
		assert.Equal(t, 422, apperror.HTTPStatus(err))
		assert.Empty(t, follows.edges)
	})

	t.Run("missing caller", func(t *testing.T) {
		svc, _, _ := newService()
		_, err := svc.Toggle(ctx, "", "b")
		assert.Equal(t, 401, apperror.HTTPStatus(err))
	})

	t.Run("unknown target", func(t *testing.T) {
		svc, _, _ := newService()
		_, err := svc.Toggle(ctx, "a", "ghost")
		assert.ErrorIs(t, err, domain.ErrTargetNotFound)
		assert.Equal(t, 404, apperror.HTTPStatus(err))
	})

	t.Run("store error surfaces", func(t *testing.T) {
		svc, follows, _ := newService()
		follows.readErr = errors.New("db down")
		_, err := svc.Toggle(ctx, "a", "b")
		assert.ErrorContains(t, err, "db down")
	})
}

func TestFollowService_Counts(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	_, err := svc.Toggle(ctx, "a", "b")
	require.NoError(t, err)

	got, err := svc.Counts(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, &domain.Counts{Followers: 1, Following: 0}, got)

	got, err = svc.Counts(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Following)
}
