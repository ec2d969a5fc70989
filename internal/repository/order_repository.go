package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/storefront-go/storefront/internal/model"
)

type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// Create inserts an order and its items in one transaction and returns
// the order ID.
func (r *OrderRepo) Create(ctx context.Context, o model.Order) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (user_id,total_cents,status,session_id) VALUES (?,?,?,?)",
		o.UserID, o.TotalCents, string(o.Status), o.SessionID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id,product_id,name,quantity,unit_cents) VALUES (?,?,?,?,?)",
			id, it.ProductID, it.Name, it.Quantity, it.UnitCents); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetBySession returns the order created for a checkout session, if any.
// The session_id column is unique, which makes checkout-success replays
// land on the existing order instead of creating a duplicate.
func (r *OrderRepo) GetBySession(ctx context.Context, sessionID string) (model.Order, error) {
	var o model.Order
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,total_cents,status,session_id,created_at FROM orders WHERE session_id=? LIMIT 1",
		sessionID).Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Status, &o.SessionID, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Order{}, ErrNotFound
	}
	return o, err
}

// GetByID returns an order with its items.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	var o model.Order
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,total_cents,status,session_id,created_at FROM orders WHERE id=? LIMIT 1",
		id).Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Status, &o.SessionID, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Order{}, ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT product_id,name,quantity,unit_cents FROM order_items WHERE order_id=? ORDER BY product_id", id)
	if err != nil {
		return model.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.UnitCents); err != nil {
			return model.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

// ListPending returns orders awaiting fulfilment (paid but not shipped).
func (r *OrderRepo) ListPending(ctx context.Context) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,total_cents,status,session_id,created_at FROM orders WHERE status IN (?,?) ORDER BY created_at",
		string(model.StatusPending), string(model.StatusPaid))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Status, &o.SessionID, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatus moves an order to a new fulfilment state.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET status=? WHERE id=?", string(status), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Totals returns the number of orders and the summed revenue in cents,
// used by the analytics endpoint.
func (r *OrderRepo) Totals(ctx context.Context) (count, revenueCents uint64, err error) {
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(total_cents),0) FROM orders").Scan(&count, &revenueCents)
	return count, revenueCents, err
}

// DailySale is one day's aggregate in the analytics response.
type DailySale struct {
	Date         string `json:"date"`
	Sales        uint64 `json:"sales"`
	RevenueCents uint64 `json:"revenue_cents"`
}

// DailySales aggregates order counts and revenue per day over [start, end].
// Days without orders are filled in with zeroes so the chart axis stays
// continuous.
func (r *OrderRepo) DailySales(ctx context.Context, start, end time.Time) ([]DailySale, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DATE(created_at), COUNT(*), COALESCE(SUM(total_cents),0)
		 FROM orders WHERE created_at BETWEEN ? AND ?
		 GROUP BY DATE(created_at)`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDay := map[string]DailySale{}
	for rows.Next() {
		var (
			d   DailySale
			day time.Time // parseTime=true maps DATE() to time.Time
		)
		if err := rows.Scan(&day, &d.Sales, &d.RevenueCents); err != nil {
			return nil, err
		}
		d.Date = day.Format("2006-01-02")
		byDay[d.Date] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []DailySale
	for day := start.UTC(); !day.After(end.UTC()); day = day.Add(24 * time.Hour) {
		key := day.Format("2006-01-02")
		if d, ok := byDay[key]; ok {
			out = append(out, d)
			continue
		}
		out = append(out, DailySale{Date: key})
	}
	return out, nil
}
