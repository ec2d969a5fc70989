package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/storefront-go/storefront/internal/model"
)

type CouponRepo struct{ DB *sql.DB }

func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{DB: db} }

const couponCols = "id,code,discount_pct,user_id,expires_at,is_active"

// ActiveForUser returns the user's current active coupon, or ErrNotFound.
func (r *CouponRepo) ActiveForUser(ctx context.Context, userID uint64) (model.Coupon, error) {
	var c model.Coupon
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+couponCols+" FROM coupons WHERE user_id=? AND is_active=1 LIMIT 1",
		userID).Scan(&c.ID, &c.Code, &c.DiscountPct, &c.UserID, &c.ExpiresAt, &c.IsActive)
	if err == sql.ErrNoRows {
		return model.Coupon{}, ErrNotFound
	}
	return c, err
}

// GetByCode returns the coupon with the given code belonging to the user.
// Codes are stored upper-cased.
func (r *CouponRepo) GetByCode(ctx context.Context, userID uint64, code string) (model.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var c model.Coupon
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+couponCols+" FROM coupons WHERE user_id=? AND code=? LIMIT 1",
		userID, code).Scan(&c.ID, &c.Code, &c.DiscountPct, &c.UserID, &c.ExpiresAt, &c.IsActive)
	if err == sql.ErrNoRows {
		return model.Coupon{}, ErrNotFound
	}
	return c, err
}

// Create inserts a coupon.  Any prior active coupon for the user is
// deactivated first so a user holds at most one live coupon at a time.
func (r *CouponRepo) Create(ctx context.Context, c model.Coupon) (uint64, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE coupons SET is_active=0 WHERE user_id=? AND is_active=1", c.UserID); err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO coupons (code,discount_pct,user_id,expires_at,is_active) VALUES (?,?,?,?,1)",
		strings.ToUpper(c.Code), c.DiscountPct, c.UserID, c.ExpiresAt.UTC())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Deactivate marks a coupon as used up or expired.
func (r *CouponRepo) Deactivate(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE coupons SET is_active=0 WHERE id=?", id)
	return err
}

// Validate looks a coupon up by code for the user and checks that it is
// active and unexpired.  An expired coupon is deactivated on the spot and
// reported as ErrNotFound.
func (r *CouponRepo) Validate(ctx context.Context, userID uint64, code string) (model.Coupon, error) {
	c, err := r.GetByCode(ctx, userID, code)
	if err != nil {
		return model.Coupon{}, err
	}
	if !c.IsActive {
		return model.Coupon{}, ErrNotFound
	}
	if time.Now().UTC().After(c.ExpiresAt) {
		_ = r.Deactivate(ctx, c.ID)
		return model.Coupon{}, ErrNotFound
	}
	return c, nil
}
