// Package queue defines message payloads exchanged over the message
// broker plus the publisher and background consumer for order events.
package queue

// OrderCreatedEvent is published when a checkout completes and an order is
// recorded.  It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type OrderCreatedEvent struct {
	OrderID    uint64   `json:"order_id"`
	UserID     uint64   `json:"user_id"`
	TotalCents uint64   `json:"total_cents"`
	Items      []string `json:"items"`
	CouponCode string   `json:"coupon_code,omitempty"`
	CreatedAt  string   `json:"created_at"`
}
