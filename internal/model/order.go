package model

import (
	"strings"
	"time"
)

// OrderStatus is the closed set of fulfilment states an order moves
// through.  Orders are created as StatusPaid (checkout already succeeded)
// and are advanced by sellers.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus validates a status string supplied by a client.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusPaid:
		return StatusPaid, true
	case StatusShipped:
		return StatusShipped, true
	case StatusDelivered:
		return StatusDelivered, true
	case StatusCancelled:
		return StatusCancelled, true
	}
	return "", false
}

// Order mirrors the `orders` table.  SessionID records the checkout
// session that paid for the order and carries a unique index so that a
// replayed checkout-success call cannot create a duplicate order.
type Order struct {
	ID         uint64      `json:"id"`          // orders.id
	UserID     uint64      `json:"user_id"`     // orders.user_id
	TotalCents uint64      `json:"total_cents"` // orders.total_cents
	Status     OrderStatus `json:"status"`      // orders.status
	SessionID  string      `json:"-"`           // orders.session_id
	CreatedAt  time.Time   `json:"created_at"`  // orders.created_at
	Items      []OrderItem `json:"items,omitempty"`
}

// OrderItem mirrors the `order_items` table.  UnitCents is the price at
// purchase time; later product price edits do not rewrite history.
type OrderItem struct {
	ProductID uint64 `json:"product_id"` // order_items.product_id
	Name      string `json:"name"`       // denormalized product name
	Quantity  uint32 `json:"quantity"`   // order_items.quantity
	UnitCents uint64 `json:"unit_cents"` // order_items.unit_cents
}
