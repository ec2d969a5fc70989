package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront-go/storefront/internal/config"
	"github.com/storefront-go/storefront/internal/model"
	"github.com/storefront-go/storefront/internal/repository"
)

// UserAdminHandler serves account administration plus the user's own
// profile update.
type UserAdminHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserAdminHandler(cfg config.Config, users *repository.UserRepo) *UserAdminHandler {
	return &UserAdminHandler{Cfg: cfg, Users: users}
}

type adminUpdateReq struct {
	Name string `json:"name"`
	Role string `json:"role"`
}
type profileUpdateReq struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// List returns all accounts (admin only).
func (h *UserAdminHandler) List(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		log.Printf("users: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// Update changes a user's name and role (admin only).
func (h *UserAdminHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req adminUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	if err := h.Users.UpdateByAdmin(ctx, id, strings.TrimSpace(req.Name), role); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		log.Printf("users: admin update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user updated"})
}

// Delete removes an account (admin only).  Admins cannot delete
// themselves; losing the last admin mid-session is not worth supporting.
func (h *UserAdminHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if u, ok := currentUser(c); ok && u.ID == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete own account"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		log.Printf("users: delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// UpdateProfile lets the authenticated user change their own name and,
// optionally, password.  The new password is hashed by the repository on
// write; it never lands anywhere in plaintext.
func (h *UserAdminHandler) UpdateProfile(c echo.Context) error {
	u, _ := currentUser(c)
	var req profileUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	if name := strings.TrimSpace(req.Name); name != "" && name != u.Name {
		if err := h.Users.UpdateName(ctx, u.ID, name); err != nil {
			log.Printf("users: profile name update failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
		}
	}
	if req.Password != "" {
		if err := h.Users.UpdatePassword(ctx, u.ID, req.Password, h.Cfg.BcryptCost); err != nil {
			log.Printf("users: profile password update failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated"})
}
