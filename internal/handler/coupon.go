package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront-go/storefront/internal/repository"
)

// CouponHandler serves the authenticated user's coupons.
type CouponHandler struct {
	Coupons *repository.CouponRepo
}

func NewCouponHandler(coupons *repository.CouponRepo) *CouponHandler {
	return &CouponHandler{Coupons: coupons}
}

type validateCouponReq struct {
	Code string `json:"code"`
}

// Get returns the user's active coupon, if any.
func (h *CouponHandler) Get(c echo.Context) error {
	u, _ := currentUser(c)
	ctx, cancel := storeCtx(c)
	defer cancel()
	coupon, err := h.Coupons.ActiveForUser(ctx, u.ID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusOK, echo.Map{"coupon": nil})
		}
		log.Printf("coupons: lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"coupon": coupon})
}

// Validate checks a code for the current user and returns the discount.
// Expired coupons are deactivated as a side effect of validation.
func (h *CouponHandler) Validate(c echo.Context) error {
	u, _ := currentUser(c)
	var req validateCouponReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	coupon, err := h.Coupons.Validate(ctx, u.ID, req.Code)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "coupon not found"})
		}
		log.Printf("coupons: validate failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "coupon is valid",
		"code":         coupon.Code,
		"discount_pct": coupon.DiscountPct,
	})
}
