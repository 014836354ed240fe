package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bazaar/internal/domain"
)

type OrderRepo struct{ db sqlx.ExtContext }

func NewOrderRepo(db sqlx.ExtContext) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, buyer_id, buyer_name, buyer_phone, total_price, status, payment_method, is_rated, rating, created_at`

// Insert writes the order header and its line items. Run it inside a
// transaction so a failed item insert leaves no header behind.
func (r *OrderRepo) Insert(ctx context.Context, o domain.Order) error {
	if o.CreatedAt == "" {
		o.CreatedAt = stamp()
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO orders(`+orderCols+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), o.ID, o.BuyerID, o.BuyerName, o.BuyerPhone, o.TotalPrice, o.Status, o.PaymentMethod, o.IsRated, o.Rating, o.CreatedAt); err != nil {
		return wrap("orders.insert", err)
	}
	for _, it := range o.Items {
		if _, err := r.db.ExecContext(ctx, r.db.Rebind(`
			INSERT INTO order_items(order_id, product_id, product_name, category, image, quantity, price_at_purchase)
			VALUES(?, ?, ?, ?, ?, ?, ?)
		`), o.ID, it.ProductID, it.ProductName, it.Category, it.Image, it.Quantity, it.PriceAtPurchase); err != nil {
			return wrap("orders.insert_item", err)
		}
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	if err := sqlx.GetContext(ctx, r.db, &o,
		r.db.Rebind(`SELECT `+orderCols+` FROM orders WHERE id = ?`), id); err != nil {
		return domain.Order{}, wrap("orders.get", err)
	}
	out := []domain.Order{o}
	if err := r.attachItems(ctx, out); err != nil {
		return domain.Order{}, err
	}
	return out[0], nil
}

// List returns every order with its items, newest first.
func (r *OrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	return r.selectOrders(ctx, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC, id`)
}

func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return r.selectOrders(ctx, `SELECT `+orderCols+` FROM orders WHERE buyer_id = ? ORDER BY created_at DESC, id`, buyerID)
}

func (r *OrderRepo) Latest(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 5
	}
	return r.selectOrders(ctx, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC, id LIMIT ?`, limit)
}

// UpdateStatus moves an order from one status to another. ok is false when
// the order is no longer in status from.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE orders SET status = ? WHERE id = ? AND status = ?`), to, id, from)
	if err != nil {
		return false, wrap("orders.status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("orders.status", err)
	}
	return n == 1, nil
}

// Rate records the buyer's stars once. ok is false when the order is not the
// buyer's, not in a rateable status, or already rated.
func (r *OrderRepo) Rate(ctx context.Context, id, buyerID string, stars int) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE orders SET is_rated = TRUE, rating = ?
		WHERE id = ? AND buyer_id = ? AND is_rated = FALSE
		  AND status IN ('Accepted', 'Shipped', 'Completed')
	`), stars, id, buyerID)
	if err != nil {
		return false, wrap("orders.rate", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("orders.rate", err)
	}
	return n == 1, nil
}

func (r *OrderRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM orders`)
	return n, wrap("orders.count", err)
}

// SalesSince sums the totals of non-rejected orders created at or after
// since. The sum is taken in Go so SQLite's REAL storage cannot add float
// error to it.
func (r *OrderRepo) SalesSince(ctx context.Context, since string) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := sqlx.SelectContext(ctx, r.db, &totals, r.db.Rebind(`
		SELECT total_price FROM orders
		WHERE status <> 'Rejected' AND created_at >= ?
	`), since)
	if err != nil {
		return decimal.Zero, wrap("orders.sales", err)
	}
	return decimal.Sum(decimal.Zero, totals...), nil
}

func (r *OrderRepo) selectOrders(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	var out []domain.Order
	if err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(q), args...); err != nil {
		return nil, wrap("orders.list", err)
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderRepo) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	q, args, err := sqlx.In(`
		SELECT order_id, product_id, product_name, category, image, quantity, price_at_purchase
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY order_id, product_name
	`, ids)
	if err != nil {
		return wrap("orders.items", err)
	}
	var lines []domain.OrderLine
	if err := sqlx.SelectContext(ctx, r.db, &lines, r.db.Rebind(q), args...); err != nil {
		return wrap("orders.items", err)
	}
	byOrder := make(map[string][]domain.OrderLine, len(orders))
	for _, l := range lines {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []domain.OrderLine{}
		}
	}
	return nil
}
