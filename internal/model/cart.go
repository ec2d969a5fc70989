package model

// CartItem mirrors the `cart_items` table: one row per (user, product).
type CartItem struct {
	UserID    uint64 // cart_items.user_id
	ProductID uint64 // cart_items.product_id
	Quantity  uint32 // cart_items.quantity
}

// CartProduct is a cart row joined with its product, as returned to the
// client when listing the cart.
type CartProduct struct {
	Product
	Quantity uint32 `json:"quantity"`
}
