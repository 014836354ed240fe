package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Category     string          `db:"category" json:"category"`
	Image        string          `db:"image" json:"image"`
	Stock        int             `db:"stock" json:"stock"`
	Rating       float64         `db:"rating" json:"rating"`
	ReviewsCount int             `db:"reviews_count" json:"reviews_count"`
	CreatedAt    string          `db:"created_at" json:"created_at"`
	UpdatedAt    string          `db:"updated_at" json:"updated_at,omitempty"`
}

// Default rating given to a product the first time it is listed.
const DefaultRating = 4.5

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

// CartLine is a product snapshot plus the quantity the buyer wants.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal is the line extension at the snapshot price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Account struct {
	ID        string          `db:"id" json:"id"`
	FirstName string          `db:"first_name" json:"first_name"`
	LastName  string          `db:"last_name" json:"last_name"`
	Email     string          `db:"email" json:"email"`
	Phone     string          `db:"phone" json:"phone"`
	Hash      string          `db:"password_hash" json:"-"`
	IsAdmin   bool            `db:"is_admin" json:"is_admin"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Avatar    string          `db:"avatar" json:"avatar,omitempty"`
	CreatedAt string          `db:"created_at" json:"created_at"`
}

// FullName is the display name snapshotted onto orders.
func (a Account) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
