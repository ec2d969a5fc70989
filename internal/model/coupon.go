package model

import "time"

// Coupon mirrors the `coupons` table.  Coupons are issued per user: a code
// is only redeemable by the user it was created for, and only while active
// and unexpired.
type Coupon struct {
	ID          uint64    `json:"id"`           // coupons.id
	Code        string    `json:"code"`         // coupons.code
	DiscountPct uint8     `json:"discount_pct"` // coupons.discount_pct
	UserID      uint64    `json:"-"`            // coupons.user_id
	ExpiresAt   time.Time `json:"expires_at"`   // coupons.expires_at
	IsActive    bool      `json:"is_active"`    // coupons.is_active
}

// Expired reports whether the coupon's expiry has passed.
func (c Coupon) Expired() bool { return time.Now().UTC().After(c.ExpiresAt) }
