package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/folioawards/folio-backend/internal/apperror"
	"github.com/folioawards/folio-backend/internal/claims/domain"
	pdomain "github.com/folioawards/folio-backend/internal/profiles/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	byUsername map[string]*pdomain.Profile
	claimErr   error
}

func (f *fakeProfiles) GetByUsername(_ context.Context, username string) (*pdomain.Profile, error) {
	p, ok := f.byUsername[username]
	if !ok {
		return nil, pdomain.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) MarkClaimed(_ context.Context, userID string) error {
	if f.claimErr != nil {
		return f.claimErr
	}
	for _, p := range f.byUsername {
		if p.UserID == userID {
			p.IsUnclaimed = false
			return nil
		}
	}
	return pdomain.ErrProfileNotFound
}

type MockResetter struct {
	mock.Mock
}

func (m *MockResetter) StartCredentialReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func newService(t *testing.T) (*ClaimService, *fakeProfiles, *MockResetter) {
	t.Helper()
	profiles := &fakeProfiles{byUsername: map[string]*pdomain.Profile{
		"studio-x": {UserID: "u1", Username: "studio-x", Email: "Owner@Studio.com", IsUnclaimed: true},
		"bob":      {UserID: "u2", Username: "bob", Email: "bob@x.com", IsUnclaimed: false},
	}}
	resetter := new(MockResetter)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClaimService(profiles, resetter, logger), profiles, resetter
}

func TestClaimService_Initiate(t *testing.T) {
	ctx := context.Background()

	t.Run("matching email starts the provider flow without mutating state", func(t *testing.T) {
		svc, profiles, resetter := newService(t)
		resetter.On("StartCredentialReset", mock.Anything, "Owner@Studio.com").Return(nil).Once()

		res, err := svc.Initiate(ctx, " owner@studio.com ", "studio-x")
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.NotEmpty(t, res.Message)
		assert.True(t, profiles.byUsername["studio-x"].IsUnclaimed)
		resetter.AssertExpectations(t)
	})

	t.Run("email mismatch is a validation error", func(t *testing.T) {
		svc, _, resetter := newService(t)

		_, err := svc.Initiate(ctx, "someone@else.com", "studio-x")
		assert.ErrorIs(t, err, domain.ErrEmailMismatch)
		assert.ErrorIs(t, err, apperror.ErrValidation)
		resetter.AssertNotCalled(t, "StartCredentialReset", mock.Anything, mock.Anything)
	})

	t.Run("unknown username looks like a mismatch", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Initiate(ctx, "a@x.com", "nobody")
		assert.ErrorIs(t, err, domain.ErrEmailMismatch)
	})

	t.Run("already claimed profile is rejected", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Initiate(ctx, "bob@x.com", "bob")
		assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
	})

	t.Run("required fields", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Initiate(ctx, "", "studio-x")
		assert.ErrorIs(t, err, domain.ErrEmailRequired)
		_, err = svc.Initiate(ctx, "a@x.com", "  ")
		assert.ErrorIs(t, err, domain.ErrUsernameRequired)
	})

	t.Run("provider failure surfaces as a system error", func(t *testing.T) {
		svc, _, resetter := newService(t)
		resetter.On("StartCredentialReset", mock.Anything, mock.Anything).Return(errors.New("provider 503")).Once()

		_, err := svc.Initiate(ctx, "owner@studio.com", "studio-x")
		require.Error(t, err)
		assert.Equal(t, 500, apperror.HTTPStatus(err))
	})
}

func TestClaimService_Finalize(t *testing.T) {
	ctx := context.Background()

	t.Run("is monotonic and idempotent", func(t *testing.T) {
		svc, profiles, _ := newService(t)

		for i := 0; i < 3; i++ {
			require.NoError(t, svc.Finalize(ctx, "u1"))
			assert.False(t, profiles.byUsername["studio-x"].IsUnclaimed)
		}
		assert.Equal(t, domain.StateClaimed, StateOf(profiles.byUsername["studio-x"]))
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, _ := newService(t)
		assert.ErrorIs(t, svc.Finalize(ctx, "ghost"), pdomain.ErrProfileNotFound)
	})

	t.Run("storage error is wrapped", func(t *testing.T) {
		svc, profiles, _ := newService(t)
		profiles.claimErr = errors.New("db down")
		assert.ErrorContains(t, svc.Finalize(ctx, "u1"), "db down")
	})
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, domain.StateUnclaimed, StateOf(&pdomain.Profile{IsUnclaimed: true}))
	assert.Equal(t, domain.StateClaimed, StateOf(&pdomain.Profile{}))
}
