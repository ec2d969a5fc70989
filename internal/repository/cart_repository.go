package repository

import (
	"context"
	"database/sql"

	"github.com/storefront-go/storefront/internal/model"
)

type CartRepo struct{ DB *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{DB: db} }

// Items returns the user's cart joined with product details.
func (r *CartRepo) Items(ctx context.Context, userID uint64) ([]model.CartProduct, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id,p.name,p.description,p.price_cents,p.image_url,p.category,p.is_featured,p.created_at,ci.quantity
		 FROM cart_items ci JOIN products p ON p.id=ci.product_id
		 WHERE ci.user_id=? ORDER BY p.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CartProduct
	for rows.Next() {
		var cp model.CartProduct
		if err := rows.Scan(&cp.ID, &cp.Name, &cp.Description, &cp.PriceCents, &cp.ImageURL,
			&cp.Category, &cp.IsFeatured, &cp.CreatedAt, &cp.Quantity); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// Add puts one unit of the product into the cart, or bumps the quantity
// when the row already exists.  The upsert keeps concurrent adds for the
// same product from racing each other.
func (r *CartRepo) Add(ctx context.Context, userID, productID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity) VALUES (?,?,1)
		 ON DUPLICATE KEY UPDATE quantity = quantity + 1`, userID, productID)
	return err
}

// SetQuantity updates the quantity of a cart row; a quantity of zero
// removes the row, matching the storefront's "decrement to delete" flow.
func (r *CartRepo) SetQuantity(ctx context.Context, userID, productID uint64, quantity uint32) error {
	if quantity == 0 {
		return r.Remove(ctx, userID, productID)
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE cart_items SET quantity=? WHERE user_id=? AND product_id=?",
		quantity, userID, productID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Remove deletes a single product from the cart.
func (r *CartRepo) Remove(ctx context.Context, userID, productID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM cart_items WHERE user_id=? AND product_id=?", userID, productID)
	return err
}

// Clear empties the user's cart, called after a successful checkout.
func (r *CartRepo) Clear(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id=?", userID)
	return err
}
