package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/folioawards/folio-backend/internal/auth"
	pdomain "github.com/folioawards/folio-backend/internal/profiles/domain"
	"github.com/folioawards/folio-backend/internal/social/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type setFollows map[[2]string]bool

func (s setFollows) Exists(_ context.Context, a, b string) (bool, error) { return s[[2]string{a, b}], nil }
func (s setFollows) Insert(_ context.Context, a, b string) error {
	s[[2]string{a, b}] = true
	return nil
}
func (s setFollows) Delete(_ context.Context, a, b string) error {
	delete(s, [2]string{a, b})
	return nil
}
func (s setFollows) Counts(context.Context, string) (int, int, error) { return 0, 0, nil }

type oneProfile struct{}

func (oneProfile) Get(_ context.Context, id string) (*pdomain.Profile, error) {
	if id == "b" {
		return &pdomain.Profile{UserID: "b", Username: "bob"}, nil
	}
	return nil, pdomain.ErrProfileNotFound
}

func TestToggle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewFollowService(setFollows{}, oneProfile{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := gin.New()
	New(svc).Register(r.Group("/api/v1", auth.OptionalUser()))

	do := func(caller, target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/follows/"+target+"/toggle", nil)
		if caller != "" {
			req.Header.Set("X-User-Id", caller)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("a", "b")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"isFollowing":true}`, w.Body.String())

	w = do("a", "b")
	assert.JSONEq(t, `{"success":true,"isFollowing":false}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do("", "b").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do("b", "b").Code)
	assert.Equal(t, http.StatusNotFound, do("a", "ghost").Code)
}
