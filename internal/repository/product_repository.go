package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/storefront-go/storefront/internal/model"
)

type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productCols = "id,name,description,price_cents,image_url,category,is_featured,created_at"

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.ImageURL, &p.Category, &p.IsFeatured, &p.CreatedAt)
	return p, err
}

func (r *ProductRepo) collect(rows *sql.Rows) ([]model.Product, error) {
	defer rows.Close()
	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a product and returns its ID.
func (r *ProductRepo) Create(ctx context.Context, p model.Product) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO products (name,description,price_cents,image_url,category,is_featured) VALUES (?,?,?,?,?,?)",
		p.Name, p.Description, p.PriceCents, p.ImageURL, p.Category, p.IsFeatured)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update overwrites the mutable columns of a product.
func (r *ProductRepo) Update(ctx context.Context, p model.Product) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET name=?, description=?, price_cents=?, image_url=?, category=? WHERE id=?",
		p.Name, p.Description, p.PriceCents, p.ImageURL, p.Category, p.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes a product row.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// GetByID fetches a single product.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// GetByIDs fetches the given products in one query.  Missing ids are
// simply absent from the result; callers decide whether that is an error.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []uint64) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph := strings.Repeat("?,", len(ids))
	ph = ph[:len(ph)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productCols+" FROM products WHERE id IN ("+ph+")", args...)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// List returns the full catalog, newest first.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+productCols+" FROM products ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// ListFeatured returns products flagged for the featured carousel.
func (r *ProductRepo) ListFeatured(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productCols+" FROM products WHERE is_featured=1 ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// ListByCategory returns products in a category, newest first.
func (r *ProductRepo) ListByCategory(ctx context.Context, category string) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productCols+" FROM products WHERE category=? ORDER BY id DESC", category)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// Random returns up to n random products for the recommendations strip.
func (r *ProductRepo) Random(ctx context.Context, n int) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productCols+" FROM products ORDER BY RAND() LIMIT ?", n)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// Search matches the query against product names and descriptions.
func (r *ProductRepo) Search(ctx context.Context, q string) ([]model.Product, error) {
	like := "%" + q + "%"
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productCols+" FROM products WHERE name LIKE ? OR description LIKE ? ORDER BY id DESC",
		like, like)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// Filter narrows the catalog by category and price range.  sort selects
// the ordering and only admits the known column/direction pairs; anything
// else falls back to newest first.
func (r *ProductRepo) Filter(ctx context.Context, category string, minCents, maxCents uint64, sort string) ([]model.Product, error) {
	query := "SELECT " + productCols + " FROM products WHERE 1=1"
	var args []any
	if category != "" {
		query += " AND category=?"
		args = append(args, category)
	}
	if minCents > 0 {
		query += " AND price_cents>=?"
		args = append(args, minCents)
	}
	if maxCents > 0 {
		query += " AND price_cents<=?"
		args = append(args, maxCents)
	}
	switch sort {
	case "price_asc":
		query += " ORDER BY price_cents ASC"
	case "price_desc":
		query += " ORDER BY price_cents DESC"
	default:
		query += " ORDER BY id DESC"
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// ToggleFeatured flips the featured flag and returns the new value.
func (r *ProductRepo) ToggleFeatured(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET is_featured = NOT is_featured WHERE id=?", id)
	if err != nil {
		return false, err
	}
	if err := requireAffected(res); err != nil {
		return false, err
	}
	var featured bool
	err = r.DB.QueryRowContext(ctx, "SELECT is_featured FROM products WHERE id=?", id).Scan(&featured)
	return featured, err
}

// Count returns the catalog size, used by analytics.
func (r *ProductRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}
