package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bazaar/internal/domain"
	"bazaar/internal/events"
	"bazaar/internal/repos"
	"bazaar/internal/services"
)

type env struct {
	db       *sqlx.DB
	state    *services.SessionState
	catalog  *services.CatalogService
	carts    *services.CartService
	favs     *services.WishlistService
	orders   *services.OrderService
	auth     *services.AuthService
	accounts *services.AccountService
	events   *events.Recorder
}

const adminEmail = "admin@bazaar.dz"

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	images := services.NewImageService(services.LocalImageStore{Dir: t.TempDir()})
	e := &env{db: db, state: services.NewSessionState(), events: &events.Recorder{}}
	e.catalog = services.NewCatalogService(db, images)
	require.NoError(t, e.catalog.Refresh(context.Background()))
	e.carts = services.NewCartService(e.state, e.catalog)
	e.favs = services.NewWishlistService(e.state, e.catalog)
	e.orders = services.NewOrderService(db, e.carts, e.catalog, e.events)
	e.auth = services.NewAuthService(db, e.state, adminEmail)
	e.accounts = services.NewAccountService(db, images)
	return e
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// product adds a catalog entry through the admin path.
func (e *env) product(t *testing.T, name, price string, stock int) domain.Product {
	t.Helper()
	p, err := e.catalog.Upsert(context.Background(), services.ProductInput{
		Name: name, Price: dec(price), Category: "Furniture", Stock: stock,
	})
	require.NoError(t, err)
	return p
}

// buyer inserts an account directly with the given wallet balance.
func (e *env) buyer(t *testing.T, balance string) domain.Account {
	t.Helper()
	acc := domain.Account{
		ID: uuid.NewString(), FirstName: "Amina", LastName: "Benali",
		Email: uuid.NewString()[:8] + "@shop.dz", Phone: "0555123456",
		Hash: "x", Balance: dec(balance),
	}
	require.NoError(t, repos.NewAccountRepo(e.db).Insert(context.Background(), acc))
	return acc
}

func (e *env) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	acc, err := repos.NewAccountRepo(e.db).ByID(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance
}

func (e *env) stock(t *testing.T, id string) int {
	t.Helper()
	qty, err := repos.NewInventoryRepo(e.db).Qty(context.Background(), id)
	require.NoError(t, err)
	return qty
}

func (e *env) orderCount(t *testing.T) int {
	t.Helper()
	n, err := repos.NewOrderRepo(e.db).Count(context.Background())
	require.NoError(t, err)
	return n
}
