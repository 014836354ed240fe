package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type InventoryRepo struct{ db sqlx.ExtContext }

func NewInventoryRepo(db sqlx.ExtContext) *InventoryRepo { return &InventoryRepo{db: db} }

// InventoryRow backs the admin stock table.
type InventoryRow struct {
	ProductID string `db:"id" json:"product_id"`
	Name      string `db:"name" json:"name"`
	Category  string `db:"category" json:"category"`
	Stock     int    `db:"stock" json:"stock"`
}

func (r *InventoryRepo) ListAll(ctx context.Context) ([]InventoryRow, error) {
	var rows []InventoryRow
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT id, name, category, stock FROM products ORDER BY stock, name`)
	return rows, wrap("inventory.list", err)
}

// Qty returns current stock for a product; a missing product is KindNotFound.
func (r *InventoryRepo) Qty(ctx context.Context, productID string) (int, error) {
	var qty int
	err := sqlx.GetContext(ctx, r.db, &qty,
		r.db.Rebind(`SELECT stock FROM products WHERE id = ?`), productID)
	return qty, wrap("inventory.qty", err)
}

// SetQty overwrites the stock level, used by admin restocking.
func (r *InventoryRepo) SetQty(ctx context.Context, productID string, qty int) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE products SET stock = ?, updated_at = ? WHERE id = ?`), qty, stamp(), productID)
	if err != nil {
		return wrap("inventory.set", err)
	}
	return expectRow("inventory.set", res)
}
