package middleware_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/auth"
	"github.com/storefront-go/storefront/internal/middleware"
	"github.com/storefront-go/storefront/internal/model"
)

// staticLoader serves a fixed set of users; unknown ids behave like a
// deleted account.
type staticLoader map[uint64]model.User

func (l staticLoader) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := l[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

type noopRegistry struct{}

func (noopRegistry) Set(context.Context, string, string, time.Duration) error { return nil }
func (noopRegistry) Get(context.Context, string) (string, error)              { return "", auth.ErrNotFound }
func (noopRegistry) Delete(context.Context, string) error                     { return nil }

func newGateFixture() (*auth.TokenService, staticLoader) {
	svc := &auth.TokenService{
		AccessSecret:  []byte("gate-access"),
		RefreshSecret: []byte("gate-refresh"),
		ResetSecret:   []byte("gate-reset"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		ResetTTL:      15 * time.Minute,
		Registry:      noopRegistry{},
	}
	users := staticLoader{
		1: {ID: 1, Email: "shopper@example.com", Role: model.RoleCustomer},
		2: {ID: 2, Email: "boss@example.com", Role: model.RoleAdmin},
		3: {ID: 3, Email: "vendor@example.com", Role: model.RoleSeller},
	}
	return svc, users
}

// run sends a request through the given middleware chain to a probe
// handler that records whether it executed and which user it saw.
func run(t *testing.T, cookie string, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, *model.User) {
	t.Helper()
	e := echo.New()
	var seen *model.User
	h := func(c echo.Context) error {
		if u, ok := middleware.CurrentUser(c); ok {
			seen = &u
		}
		return c.NoContent(http.StatusOK)
	}
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: cookie})
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec, seen
}

func TestAuthenticatedRejectsMissingCookie(t *testing.T) {
	svc, users := newGateFixture()
	rec, seen := run(t, "", middleware.Authenticated(svc, users))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestAuthenticatedRejectsInvalidToken(t *testing.T) {
	svc, users := newGateFixture()
	rec, seen := run(t, "garbage", middleware.Authenticated(svc, users))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestAuthenticatedAttachesUser(t *testing.T) {
	svc, users := newGateFixture()
	access, _, err := svc.IssuePair(1)
	require.NoError(t, err)

	rec, seen := run(t, access, middleware.Authenticated(svc, users))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, uint64(1), seen.ID)
	assert.Equal(t, model.RoleCustomer, seen.Role)
}

func TestAuthenticatedRejectsDeletedUser(t *testing.T) {
	svc, users := newGateFixture()
	access, _, err := svc.IssuePair(99) // valid token, no such account
	require.NoError(t, err)

	rec, seen := run(t, access, middleware.Authenticated(svc, users))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestRequireRole(t *testing.T) {
	svc, users := newGateFixture()

	tests := []struct {
		name     string
		userID   uint64
		required model.Role
		want     int
	}{
		{"customer hits admin gate", 1, model.RoleAdmin, http.StatusForbidden},
		{"customer hits seller gate", 1, model.RoleSeller, http.StatusForbidden},
		{"seller hits seller gate", 3, model.RoleSeller, http.StatusOK},
		{"seller hits admin gate", 3, model.RoleAdmin, http.StatusForbidden},
		{"admin hits admin gate", 2, model.RoleAdmin, http.StatusOK},
		{"admin hits seller gate", 2, model.RoleSeller, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access, _, err := svc.IssuePair(tt.userID)
			require.NoError(t, err)
			rec, _ := run(t, access,
				middleware.Authenticated(svc, users),
				middleware.RequireRole(tt.required))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireRoleWithoutAuthentication(t *testing.T) {
	// The gate running without Authenticated upstream must reject, not
	// panic or pass.
	rec, _ := run(t, "", middleware.RequireRole(model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
