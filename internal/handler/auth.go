package handler

import (
	"context"      // provides context with timeout for store calls
	"database/sql" // sql.ErrNoRows signals a missing user
	"log"          // server-side logging of upstream failures
	"net/http"     // HTTP status codes and cookie primitives
	"strings"      // string normalization utilities
	"time"         // timeouts for store calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/storefront-go/storefront/internal/auth"
	"github.com/storefront-go/storefront/internal/config"
	"github.com/storefront-go/storefront/internal/model"
	"github.com/storefront-go/storefront/internal/repository"
	"github.com/storefront-go/storefront/internal/service"
	"github.com/storefront-go/storefront/internal/utils"
)

// CredentialStore is the slice of the user repository the account flows
// need.  Passwords cross this boundary as plaintext exactly once, into
// Create/UpdatePassword, which hash on write.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Create(ctx context.Context, email, password, name string, role model.Role, cost int) (uint64, error)
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
}

// AuthHandler bundles dependencies for the account flow endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  CredentialStore
	Tokens *auth.TokenService
	Mail   service.Mailer
}

func NewAuthHandler(cfg config.Config, users CredentialStore, tokens *auth.TokenService, mail service.Mailer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens, Mail: mail}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type emailReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
type tokenReq struct {
	Token string `json:"token"`
}

type userPart struct {
	ID    uint64     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// ----- cookie helpers -----

// setAuthCookies attaches both tokens as HTTP-only, same-site-strict
// cookies.  Secure is enabled outside of dev so tokens never travel over
// plain HTTP in production.
func (h *AuthHandler) setAuthCookies(c echo.Context, access, refresh string) {
	secure := h.Cfg.Env != "dev"
	c.SetCookie(&http.Cookie{
		Name: "accessToken", Value: access, Path: "/",
		MaxAge: h.Cfg.AccessTTLMin * 60,
		HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode,
	})
	c.SetCookie(&http.Cookie{
		Name: "refreshToken", Value: refresh, Path: "/",
		MaxAge: h.Cfg.RefreshTTLDays * 24 * 60 * 60,
		HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	secure := h.Cfg.Env != "dev"
	for _, name := range []string{"accessToken", "refreshToken"} {
		c.SetCookie(&http.Cookie{
			Name: name, Value: "", Path: "/", MaxAge: -1,
			HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode,
		})
	}
}

// issueSession mints a token pair for the user, persists the refresh
// token (overwriting any prior session) and sets both cookies.
func (h *AuthHandler) issueSession(ctx context.Context, c echo.Context, userID uint64) error {
	access, refresh, err := h.Tokens.IssuePair(userID)
	if err != nil {
		return err
	}
	if err := h.Tokens.PersistRefresh(ctx, userID, refresh); err != nil {
		return err
	}
	h.setAuthCookies(c, access, refresh)
	return nil
}

// ----- handlers -----

// Signup creates an account and opens a session immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, req.Name, model.RoleCustomer, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists"})
		}
		log.Printf("signup: create user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	if err := h.issueSession(ctx, c, uid); err != nil {
		log.Printf("signup: issue session failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	return c.JSON(http.StatusCreated, userPart{ID: uid, Name: req.Name, Email: req.Email, Role: model.RoleCustomer})
}

// Login verifies credentials and opens a session, invalidating any prior
// refresh token for the user.  The failure response has a constant shape:
// an unknown email and a wrong password are indistinguishable to the
// caller, so accounts cannot be enumerated here.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Printf("login: query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := h.issueSession(ctx, c, u.ID); err != nil {
		log.Printf("login: issue session failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// Logout revokes the session named by the refresh cookie and clears both
// cookies.  It is idempotent: a missing, garbled or already-revoked cookie
// still yields a success response.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		if uid, err := h.Tokens.VerifyRefresh(cookie.Value); err == nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			if err := h.Tokens.Revoke(ctx, uid); err != nil {
				log.Printf("logout: revoke failed: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
			}
		}
	}
	h.clearAuthCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Refresh exchanges the refresh cookie for a fresh access token.  The
// refresh token itself is not rotated; it stays valid until logout, a new
// login, or its own expiry.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie("refreshToken")
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no refresh token provided"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	access, _, err := h.Tokens.RotateAccess(ctx, cookie.Value)
	if err != nil {
		if err == auth.ErrInvalidRefreshToken {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		log.Printf("refresh: registry lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	secure := h.Cfg.Env != "dev"
	c.SetCookie(&http.Cookie{
		Name: "accessToken", Value: access, Path: "/",
		MaxAge: h.Cfg.AccessTTLMin * 60,
		HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "token refreshed"})
}

// Profile returns the authenticated user's record.
func (h *AuthHandler) Profile(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// ForgotPassword issues a password-reset token and mails a reset link.
// An unknown email is reported as 404; the reset flow is explicit about
// existence, unlike login.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "email not found"})
		}
		log.Printf("forgot-password: query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	token, err := h.Tokens.IssueReset(u.ID)
	if err != nil {
		log.Printf("forgot-password: issue reset token failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue reset token failed"})
	}

	link := h.Cfg.FrontendURL + "/reset-password/" + token
	body := `You requested a password reset. Follow the link below to choose a new password:<br>` +
		`<a href="` + link + `">` + link + `</a><br>` +
		`If you did not request this, you can ignore this email.`
	// Fire and forget: a mail relay hiccup must not fail the request.
	if err := h.Mail.Send(u.Email, "Reset your password", body); err != nil {
		log.Printf("forgot-password: send mail to %s failed: %v", u.Email, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reset link sent"})
}

// ResetPassword consumes a reset token and stores the new password.
// Reset tokens are stateless: one remains verifiable until its expiry
// even after a successful reset.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || req.Token == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token/password required"})
	}

	uid, err := h.Tokens.VerifyReset(req.Token)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, uid, req.Password, h.Cfg.BcryptCost); err != nil {
		if err == repository.ErrNotFound || err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		log.Printf("reset-password: update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset"})
}

// VerifyResetToken reports whether a reset token is still valid, so the
// frontend can show the reset form or an expiry notice.
func (h *AuthHandler) VerifyResetToken(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}
	if _, err := h.Tokens.VerifyReset(req.Token); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "message": "invalid or expired token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": true, "message": "token is valid"})
}

// VerifyToken is the self-checking endpoint: it validates the access
// cookie and returns the user it belongs to, without going through the
// authentication middleware.
func (h *AuthHandler) VerifyToken(c echo.Context) error {
	cookie, err := c.Cookie("accessToken")
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no access token provided"})
	}
	uid, err := h.Tokens.VerifyAccess(cookie.Value)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid user"})
		}
		log.Printf("verify-token: load user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "token is valid", "user": toUserPart(u)})
}
