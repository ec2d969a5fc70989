package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/auth"
	"github.com/storefront-go/storefront/internal/config"
	"github.com/storefront-go/storefront/internal/handler"
	"github.com/storefront-go/storefront/internal/model"
	"github.com/storefront-go/storefront/internal/repository"
	"github.com/storefront-go/storefront/internal/utils"
)

// memUsers is an in-memory credential store mirroring the repository
// contract: sql.ErrNoRows for missing users, ErrEmailExists on
// duplicates, hash-on-write for passwords.
type memUsers struct {
	mu   sync.Mutex
	seq  uint64
	rows map[uint64]model.User
}

func newMemUsers() *memUsers { return &memUsers{rows: map[uint64]model.User{}} }

func (s *memUsers) Create(_ context.Context, email, password, name string, role model.Role, cost int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	s.seq++
	s.rows[s.seq] = model.User{ID: s.seq, Email: email, Name: name, PasswordHash: hash, Role: role}
	return s.seq, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *memUsers) UpdatePassword(_ context.Context, id uint64, password string, cost int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	s.rows[id] = u
	return nil
}

// captureMailer records outbound mail instead of delivering it.
type captureMailer struct {
	mu   sync.Mutex
	sent []struct{ To, Subject, Body string }
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, struct{ To, Subject, Body string }{to, subject, body})
	return nil
}

func (m *captureMailer) last(t *testing.T) struct{ To, Subject, Body string } {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type fixture struct {
	h     *handler.AuthHandler
	e     *echo.Echo
	users *memUsers
	mail  *captureMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.Config{
		Env:            "dev",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		ResetTTLMin:    15,
		BcryptCost:     4, // minimum cost keeps the suite fast
		FrontendURL:    "http://localhost:3000",
	}
	tokens := &auth.TokenService{
		AccessSecret:  []byte("test-access"),
		RefreshSecret: []byte("test-refresh"),
		ResetSecret:   []byte("test-reset"),
		AccessTTL:     cfg.AccessTTL(),
		RefreshTTL:    cfg.RefreshTTL(),
		ResetTTL:      cfg.ResetTTL(),
		Registry:      repository.NewSessionRepo(client),
	}
	users := newMemUsers()
	mail := &captureMailer{}
	return &fixture{
		h:     handler.NewAuthHandler(cfg, users, tokens, mail),
		e:     echo.New(),
		users: users,
		mail:  mail,
	}
}

// post runs a handler with a JSON body and optional cookies.
func (f *fixture) post(t *testing.T, h echo.HandlerFunc, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(f.e.NewContext(req, rec)))
	return rec
}

func (f *fixture) get(t *testing.T, h echo.HandlerFunc, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(f.e.NewContext(req, rec)))
	return rec
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func (f *fixture) signup(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return f.post(t, f.h.Signup, `{"name":"Ada","email":"`+email+`","password":"`+password+`"}`)
}

func (f *fixture) login(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return f.post(t, f.h.Login, `{"email":"`+email+`","password":"`+password+`"}`)
}

func TestSignupOpensSession(t *testing.T) {
	f := newFixture(t)
	rec := f.signup(t, "a@x.com", "p1")
	assert.Equal(t, http.StatusCreated, rec.Code)

	access := cookieByName(t, rec, "accessToken")
	refresh := cookieByName(t, rec, "refreshToken")
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, 15*60, access.MaxAge)
	assert.Equal(t, 7*24*60*60, refresh.MaxAge)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a@x.com", body["email"])
	assert.Equal(t, string(model.RoleCustomer), body["role"])
}

func TestSignupDuplicateEmailLeavesSessionAlone(t *testing.T) {
	f := newFixture(t)
	first := f.signup(t, "a@x.com", "p1")
	require.Equal(t, http.StatusCreated, first.Code)
	refresh := cookieByName(t, first, "refreshToken")

	dup := f.signup(t, "a@x.com", "other")
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.Empty(t, dup.Result().Cookies(), "conflict must not issue tokens")

	// The first session's refresh token still rotates: the failed signup
	// did not touch the registry.
	rec := f.post(t, f.h.Refresh, "", refresh)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginInvalidCredentialsHaveConstantShape(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.signup(t, "a@x.com", "p1").Code)

	unknown := f.login(t, "nobody@x.com", "p1")
	wrongPass := f.login(t, "a@x.com", "wrong")

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	// Identical bodies: the caller cannot tell which credential was wrong.
	assert.Equal(t, unknown.Body.String(), wrongPass.Body.String())
}

func TestSecondLoginInvalidatesFirstSession(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.signup(t, "a@x.com", "p1").Code)

	first := f.login(t, "a@x.com", "p1")
	require.Equal(t, http.StatusOK, first.Code)
	firstRefresh := cookieByName(t, first, "refreshToken")

	second := f.login(t, "a@x.com", "p1")
	require.Equal(t, http.StatusOK, second.Code)
	secondRefresh := cookieByName(t, second, "refreshToken")

	rec := f.post(t, f.h.Refresh, "", firstRefresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.post(t, f.h.Refresh, "", secondRefresh)
	assert.Equal(t, http.StatusOK, rec.Code)
	fresh := cookieByName(t, rec, "accessToken")
	assert.NotEmpty(t, fresh.Value)
}

func TestLogoutRevokesAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	signup := f.signup(t, "a@x.com", "p1")
	require.Equal(t, http.StatusCreated, signup.Code)
	refresh := cookieByName(t, signup, "refreshToken")

	out := f.post(t, f.h.Logout, "", refresh)
	assert.Equal(t, http.StatusOK, out.Code)
	// Both cookies cleared.
	for _, name := range []string{"accessToken", "refreshToken"} {
		ck := cookieByName(t, out, name)
		assert.Empty(t, ck.Value)
		assert.Equal(t, -1, ck.MaxAge)
	}

	// Logging out again, with or without the stale cookie, still succeeds.
	assert.Equal(t, http.StatusOK, f.post(t, f.h.Logout, "", refresh).Code)
	assert.Equal(t, http.StatusOK, f.post(t, f.h.Logout, "").Code)

	// The revoked refresh token no longer rotates.
	rec := f.post(t, f.h.Refresh, "", refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	f := newFixture(t)
	rec := f.post(t, f.h.Refresh, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRejectsForgedCookie(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.signup(t, "a@x.com", "p1").Code)

	rec := f.post(t, f.h.Refresh, "", &http.Cookie{Name: "refreshToken", Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyToken(t *testing.T) {
	f := newFixture(t)
	signup := f.signup(t, "a@x.com", "p1")
	require.Equal(t, http.StatusCreated, signup.Code)
	access := cookieByName(t, signup, "accessToken")

	ok := f.get(t, f.h.VerifyToken, access)
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Contains(t, ok.Body.String(), "a@x.com")

	bad := f.get(t, f.h.VerifyToken, &http.Cookie{Name: "accessToken", Value: "nope"})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	missing := f.get(t, f.h.VerifyToken)
	assert.Equal(t, http.StatusUnauthorized, missing.Code)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newFixture(t)
	rec := f.post(t, f.h.ForgotPassword, `{"email":"ghost@x.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.signup(t, "a@x.com", "p1").Code)

	rec := f.post(t, f.h.ForgotPassword, `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	mail := f.mail.last(t)
	assert.Equal(t, "a@x.com", mail.To)
	_, rest, found := strings.Cut(mail.Body, "/reset-password/")
	require.True(t, found, "mail body carries the reset link")
	token, _, _ := strings.Cut(rest, `"`)
	require.NotEmpty(t, token)

	// The token checks out before use.
	check := f.post(t, f.h.VerifyResetToken, `{"token":"`+token+`"}`)
	assert.Equal(t, http.StatusOK, check.Code)

	reset := f.post(t, f.h.ResetPassword, `{"token":"`+token+`","password":"p2"}`)
	assert.Equal(t, http.StatusOK, reset.Code)

	assert.Equal(t, http.StatusUnauthorized, f.login(t, "a@x.com", "p1").Code)
	assert.Equal(t, http.StatusOK, f.login(t, "a@x.com", "p2").Code)
}

func TestResetPasswordRejectsBadToken(t *testing.T) {
	f := newFixture(t)
	rec := f.post(t, f.h.ResetPassword, `{"token":"junk","password":"p2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	check := f.post(t, f.h.VerifyResetToken, `{"token":"junk"}`)
	assert.Equal(t, http.StatusBadRequest, check.Code)
	assert.Contains(t, check.Body.String(), `"valid":false`)
}

func TestSignupLogoutRefreshEndToEnd(t *testing.T) {
	f := newFixture(t)

	signup := f.signup(t, "a@x.com", "p1")
	require.Equal(t, http.StatusCreated, signup.Code)
	refresh := cookieByName(t, signup, "refreshToken")

	require.Equal(t, http.StatusOK, f.post(t, f.h.Logout, "", refresh).Code)

	rec := f.post(t, f.h.Refresh, "", refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")
}
