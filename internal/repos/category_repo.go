package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// CategoryRepo reads category labels. Categories are free text on products,
// so there is no table of their own.
type CategoryRepo struct{ db sqlx.ExtContext }

func NewCategoryRepo(db sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{db: db} }

type CategoryCount struct {
	Name     string `db:"category" json:"name"`
	Products int    `db:"products" json:"products"`
}

func (r *CategoryRepo) List(ctx context.Context) ([]CategoryCount, error) {
	var out []CategoryCount
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT category, COUNT(*) AS products
		FROM products
		GROUP BY category
		ORDER BY category
	`)
	return out, wrap("categories.list", err)
}
