package repos

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// TimeLayout is fixed width so text comparison orders timestamps correctly.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Now is swapped by tests that need deterministic timestamps.
var Now = func() time.Time { return time.Now().UTC() }

func stamp() string { return Now().UTC().Format(TimeLayout) }

// OpenDB connects with driver "sqlite" (modernc) or "pgx" (Postgres) and
// brings the schema and demo catalog up to date.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one connection: an in-memory database is private to its connection,
		// and sqlite serialises writers anyway
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, wrap("ping", err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := seedIfEmpty(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
  category TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  rating DOUBLE PRECISION NOT NULL DEFAULT 4.5,
  reviews_count INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,

	`CREATE TABLE IF NOT EXISTS accounts(
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL UNIQUE,
  phone TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  is_admin BOOLEAN NOT NULL DEFAULT FALSE,
  balance NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
  avatar TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT ''
)`,

	`CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  account_id TEXT NULL REFERENCES accounts(id) ON DELETE SET NULL,
  locale TEXT NOT NULL DEFAULT '',
  theme TEXT NOT NULL DEFAULT 'light',
  created_at TEXT NOT NULL,
  last_seen TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_account ON sessions(account_id)`,

	`CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  buyer_name TEXT NOT NULL,
  buyer_phone TEXT NOT NULL DEFAULT '',
  total_price NUMERIC(14,2) NOT NULL CHECK (total_price >= 0),
  status TEXT NOT NULL CHECK (status IN ('Pending','Accepted','Rejected','Shipped','Completed')),
  payment_method TEXT NOT NULL CHECK (payment_method IN ('Wallet','COD')),
  is_rated BOOLEAN NOT NULL DEFAULT FALSE,
  rating INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id)`,

	// line items are snapshots: no foreign key to products
	`CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  price_at_purchase NUMERIC(12,2) NOT NULL,
  PRIMARY KEY (order_id, product_id)
)`,
}

func ensureSchema(db *sqlx.DB) error {
	if db.DriverName() == "sqlite" {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			return wrap("schema", err)
		}
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return wrap("schema", err)
		}
	}
	return nil
}

type seedProduct struct {
	id, name, desc, category, image, price string
	stock                                  int
}

var demoCatalog = []seedProduct{
	{"prd-chair-oak", "كرسي خشب البلوط", "كرسي مريح من خشب البلوط الطبيعي.", "أثاث", "products/chair-oak.jpg", "5000", 12},
	{"prd-lamp-brass", "Brass desk lamp", "Adjustable brass lamp with warm light.", "Lighting", "products/lamp-brass.jpg", "3200", 4},
	{"prd-rug-kabyle", "Tapis kabyle", "Tapis tissé à la main, motifs berbères.", "Décoration", "products/rug-kabyle.jpg", "18500", 2},
	{"prd-teapot", "إبريق شاي نحاسي", "إبريق تقليدي من النحاس المطروق.", "مطبخ", "products/teapot.jpg", "2600", 20},
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return wrap("seed.count", err)
	}
	if n > 0 {
		return nil
	}
	log.Println("[seed] inserting demo catalog")

	return InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		repo := NewProductRepo(tx)
		base := Now()
		for i, s := range demoCatalog {
			p := mustSeedProduct(s)
			// distinct timestamps keep the newest-first order stable
			p.CreatedAt = base.Add(-time.Duration(i) * time.Second).Format(TimeLayout)
			if err := repo.Upsert(context.Background(), p); err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedAdmin creates the administrator account once. An existing account with
// the same email is left untouched.
func SeedAdmin(ctx context.Context, db *sqlx.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("seed admin: empty email")
	}
	accounts := NewAccountRepo(db)
	if _, err := accounts.ByEmail(ctx, email); err == nil {
		return nil
	} else if KindOf(err) != KindNotFound {
		return err
	}
	if password == "" {
		password = uuid.NewString()
		log.Printf("[seed] ADMIN_PASSWORD unset; admin %s gets a random password", email)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := newAdmin(email, string(h))
	return accounts.Insert(ctx, admin)
}

// InTx runs fn inside a transaction, committing only when fn returns nil.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("tx.begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrap("tx.commit", err)
	}
	return nil
}
