package repos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bazaar/internal/domain"
)

type ProductRepo struct{ db sqlx.ExtContext }

// NewProductRepo accepts a *sqlx.DB or a *sqlx.Tx.
func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, description, price, category, image, stock, rating, reviews_count, created_at, updated_at`

// List returns the whole catalog, newest first.
func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := sqlx.SelectContext(ctx, r.db, &out,
		`SELECT `+productCols+` FROM products ORDER BY created_at DESC, id`)
	return out, wrap("products.list", err)
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p,
		r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	return p, wrap("products.get", err)
}

// Upsert inserts p or overwrites every mutable column of an existing row.
// created_at of an existing row is never changed.
func (r *ProductRepo) Upsert(ctx context.Context, p domain.Product) error {
	now := stamp()
	if p.CreatedAt == "" {
		p.CreatedAt = now
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO products(id, name, description, price, category, image, stock, rating, reviews_count, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name,
		  description = excluded.description,
		  price = excluded.price,
		  category = excluded.category,
		  image = excluded.image,
		  stock = excluded.stock,
		  rating = excluded.rating,
		  reviews_count = excluded.reviews_count,
		  updated_at = excluded.updated_at
	`), p.ID, p.Name, p.Description, p.Price, p.Category, p.Image, p.Stock, p.Rating, p.ReviewsCount, p.CreatedAt, now)
	return wrap("products.upsert", err)
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return wrap("products.delete", err)
	}
	return expectRow("products.delete", res)
}

// DecrementStock removes qty units only if that many are on hand. ok is false
// when the guard rejected the update (or the product is gone).
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products SET stock = stock - ?, updated_at = ?
		WHERE id = ? AND stock >= ?
	`), qty, stamp(), id, qty)
	if err != nil {
		return false, wrap("products.decrement", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("products.decrement", err)
	}
	return n == 1, nil
}

// AddReview folds one star rating into the running average.
func (r *ProductRepo) AddReview(ctx context.Context, id string, stars int) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products
		SET rating = (rating * reviews_count + ?) / (reviews_count + 1),
		    reviews_count = reviews_count + 1
		WHERE id = ?
	`), float64(stars), id)
	return wrap("products.review", err)
}

// LowStock lists products with fewer than below units, lowest first.
func (r *ProductRepo) LowStock(ctx context.Context, below int) ([]domain.Product, error) {
	var out []domain.Product
	err := sqlx.SelectContext(ctx, r.db, &out,
		r.db.Rebind(`SELECT `+productCols+` FROM products WHERE stock < ? ORDER BY stock, name`), below)
	return out, wrap("products.low_stock", err)
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM products`)
	return n, wrap("products.count", err)
}

func expectRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return notFound(op)
	}
	return nil
}

func mustSeedProduct(s seedProduct) domain.Product {
	return domain.Product{
		ID:          s.id,
		Name:        s.name,
		Description: s.desc,
		Price:       decimal.RequireFromString(s.price),
		Category:    s.category,
		Image:       s.image,
		Stock:       s.stock,
		Rating:      domain.DefaultRating,
	}
}
