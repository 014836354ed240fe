package repos_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazaar/internal/domain"
	"bazaar/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestOpenDBSeedsCatalogOnce(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	products := repos.NewProductRepo(db)

	n, err := products.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	list, err := products.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "prd-chair-oak", list[0].ID, "newest first")
	assert.True(t, list[0].Price.Equal(dec("5000")))
	assert.Equal(t, domain.DefaultRating, list[0].Rating)
}

func TestProductUpsertKeepsCreatedAt(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	products := repos.NewProductRepo(db)

	before, err := products.Get(ctx, "prd-teapot")
	require.NoError(t, err)

	before.Name = "Teapot"
	before.Price = dec("2750.50")
	before.CreatedAt = "2000-01-01T00:00:00.000000Z"
	require.NoError(t, products.Upsert(ctx, before))

	after, err := products.Get(ctx, "prd-teapot")
	require.NoError(t, err)
	assert.Equal(t, "Teapot", after.Name)
	assert.True(t, after.Price.Equal(dec("2750.5")))
	assert.NotEqual(t, "2000-01-01T00:00:00.000000Z", after.CreatedAt)
}

func TestProductDeleteUnknownIsNotFound(t *testing.T) {
	db := memdb(t)
	err := repos.NewProductRepo(db).Delete(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, repos.ErrNotFound))
	assert.Equal(t, repos.KindNotFound, repos.KindOf(err))
}

func TestDecrementStockGuard(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	products := repos.NewProductRepo(db)

	ok, err := products.DecrementStock(ctx, "prd-rug-kabyle", 3)
	require.NoError(t, err)
	assert.False(t, ok, "only 2 on hand")

	ok, err = products.DecrementStock(ctx, "prd-rug-kabyle", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	qty, err := repos.NewInventoryRepo(db).Qty(ctx, "prd-rug-kabyle")
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
}

func TestAddReviewRunningAverage(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	products := repos.NewProductRepo(db)

	require.NoError(t, products.AddReview(ctx, "prd-lamp-brass", 3))
	p, err := products.Get(ctx, "prd-lamp-brass")
	require.NoError(t, err)
	assert.Equal(t, 1, p.ReviewsCount)
	assert.InDelta(t, 3.0, p.Rating, 0.0001)

	require.NoError(t, products.AddReview(ctx, "prd-lamp-brass", 5))
	p, err = products.Get(ctx, "prd-lamp-brass")
	require.NoError(t, err)
	assert.Equal(t, 2, p.ReviewsCount)
	assert.InDelta(t, 4.0, p.Rating, 0.0001)
}

func TestCategoriesDistinct(t *testing.T) {
	db := memdb(t)
	cats, err := repos.NewCategoryRepo(db).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 4)
	for _, c := range cats {
		assert.Equal(t, 1, c.Products)
	}
}

func buyer(id, email string, balance string) domain.Account {
	return domain.Account{ID: id, FirstName: "Amina", LastName: "B", Email: email, Phone: "0555123456", Hash: "x", Balance: dec(balance)}
}

func TestAccountsDuplicateEmailConflict(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	accounts := repos.NewAccountRepo(db)

	require.NoError(t, accounts.Insert(ctx, buyer("a1", "amina@shop.dz", "0")))
	err := accounts.Insert(ctx, buyer("a2", "AMINA@shop.dz", "0"))
	require.Error(t, err)
	assert.Equal(t, repos.KindConflict, repos.KindOf(err))

	got, err := accounts.ByEmail(ctx, "Amina@Shop.dz")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
	assert.False(t, got.IsAdmin)
}

func TestDebitGuard(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	accounts := repos.NewAccountRepo(db)
	require.NoError(t, accounts.Insert(ctx, buyer("a1", "a@shop.dz", "100")))

	ok, err := accounts.Debit(ctx, "a1", dec("150"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, accounts.Credit(ctx, "a1", dec("50.25")))
	ok, err = accounts.Debit(ctx, "a1", dec("150"))
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := accounts.ByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("0.25")), got.Balance.String())
}

func TestBalanceStaysOnCentGrid(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	accounts := repos.NewAccountRepo(db)
	require.NoError(t, accounts.Insert(ctx, buyer("a1", "a@shop.dz", "0")))

	require.NoError(t, accounts.Credit(ctx, "a1", dec("0.30")))
	ok, err := accounts.Debit(ctx, "a1", dec("0.10"))
	require.NoError(t, err)
	require.True(t, ok)

	got, err := accounts.ByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "0.20", got.Balance.StringFixed(2))
	assert.True(t, got.Balance.Equal(dec("0.2")), got.Balance.String())

	ok, err = accounts.Debit(ctx, "a1", dec("0.20"))
	require.NoError(t, err)
	assert.True(t, ok, "exact balance covers the debit")
	got, err = accounts.ByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero(), got.Balance.String())

	for range 10 {
		require.NoError(t, accounts.Credit(ctx, "a1", dec("0.10")))
	}
	got, err = accounts.ByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("1")), got.Balance.String())
}

func TestSeedAdminIdempotent(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	require.NoError(t, repos.SeedAdmin(ctx, db, "Boss@Bazaar.dz", "Adm1n!pass"))
	require.NoError(t, repos.SeedAdmin(ctx, db, "boss@bazaar.dz", "other"))

	admin, err := repos.NewAccountRepo(db).ByEmail(ctx, "boss@bazaar.dz")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	n, err := repos.NewAccountRepo(db).CountBuyers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSessionsBindAndPreferences(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	require.NoError(t, repos.NewAccountRepo(db).Insert(ctx, buyer("a1", "a@shop.dz", "0")))
	sessions := repos.NewSessionRepo(db)

	prefs, err := sessions.Preferences(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences(), prefs)

	_, err = sessions.Account(ctx, "sid-1")
	assert.Equal(t, repos.KindNotFound, repos.KindOf(err))

	require.NoError(t, sessions.SetPreferences(ctx, "sid-1", domain.Preferences{Locale: domain.LocaleFrench, Theme: domain.ThemeDark}))
	require.NoError(t, sessions.Bind(ctx, "sid-1", "a1"))

	acc, err := sessions.Account(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "a1", acc.ID)

	prefs, err = sessions.Preferences(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, domain.LocaleFrench, prefs.Locale)
	assert.Equal(t, domain.ThemeDark, prefs.Theme)

	require.NoError(t, sessions.Unbind(ctx, "sid-1"))
	_, err = sessions.Account(ctx, "sid-1")
	assert.Equal(t, repos.KindNotFound, repos.KindOf(err))
}

func TestChosenLocaleOnlyWhenSaved(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	sessions := repos.NewSessionRepo(db)

	_, chosen, err := sessions.ChosenLocale(ctx, "sid-1")
	require.NoError(t, err)
	assert.False(t, chosen, "unknown session")

	require.NoError(t, sessions.Touch(ctx, "sid-1"))
	_, chosen, err = sessions.ChosenLocale(ctx, "sid-1")
	require.NoError(t, err)
	assert.False(t, chosen, "session without a saved choice")
	prefs, err := sessions.Preferences(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLocale, prefs.Locale)

	require.NoError(t, sessions.SetPreferences(ctx, "sid-1", domain.Preferences{Locale: domain.LocaleEnglish, Theme: domain.ThemeLight}))
	loc, chosen, err := sessions.ChosenLocale(ctx, "sid-1")
	require.NoError(t, err)
	assert.True(t, chosen)
	assert.Equal(t, domain.LocaleEnglish, loc)
}

func sampleOrder(id, buyerID string, status domain.OrderStatus, created string) domain.Order {
	lines := []domain.OrderLine{
		{ProductID: "prd-chair-oak", ProductName: "Chair", Category: "أثاث", Quantity: 2, PriceAtPurchase: dec("5000")},
		{ProductID: "prd-teapot", ProductName: "Teapot", Quantity: 1, PriceAtPurchase: dec("2600")},
	}
	return domain.Order{
		ID: id, BuyerID: buyerID, BuyerName: "Amina B", BuyerPhone: "0555123456",
		TotalPrice: domain.LinesTotal(lines), Status: status, PaymentMethod: domain.PayCOD,
		CreatedAt: created, Items: lines,
	}
}

func TestOrdersInsertGetList(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	orders := repos.NewOrderRepo(db)

	require.NoError(t, orders.Insert(ctx, sampleOrder("ORD-AAAAAA", "a1", domain.StatusPending, "2026-01-01T10:00:00.000000Z")))
	require.NoError(t, orders.Insert(ctx, sampleOrder("ORD-BBBBBB", "a2", domain.StatusPending, "2026-01-02T10:00:00.000000Z")))

	got, err := orders.Get(ctx, "ORD-AAAAAA")
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.True(t, got.TotalPrice.Equal(dec("12600")))
	assert.Equal(t, "Chair", got.Items[0].ProductName)

	all, err := orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ORD-BBBBBB", all[0].ID)

	mine, err := orders.ListByBuyer(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Len(t, mine[0].Items, 2)

	_, err = orders.Get(ctx, "ORD-ZZZZZZ")
	assert.True(t, errors.Is(err, repos.ErrNotFound))
}

func TestOrderLinesSurviveProductDelete(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	orders := repos.NewOrderRepo(db)
	require.NoError(t, orders.Insert(ctx, sampleOrder("ORD-AAAAAA", "a1", domain.StatusPending, "")))
	require.NoError(t, repos.NewProductRepo(db).Delete(ctx, "prd-chair-oak"))

	got, err := orders.Get(ctx, "ORD-AAAAAA")
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.True(t, got.TotalPrice.Equal(dec("12600")))
}

func TestUpdateStatusGuard(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	orders := repos.NewOrderRepo(db)
	require.NoError(t, orders.Insert(ctx, sampleOrder("ORD-AAAAAA", "a1", domain.StatusPending, "")))

	ok, err := orders.UpdateStatus(ctx, "ORD-AAAAAA", domain.StatusPending, domain.StatusAccepted)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = orders.UpdateStatus(ctx, "ORD-AAAAAA", domain.StatusPending, domain.StatusRejected)
	require.NoError(t, err)
	assert.False(t, ok, "no longer pending")
}

func TestRateGuard(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	orders := repos.NewOrderRepo(db)
	require.NoError(t, orders.Insert(ctx, sampleOrder("ORD-PPPPPP", "a1", domain.StatusPending, "")))
	require.NoError(t, orders.Insert(ctx, sampleOrder("ORD-SSSSSS", "a1", domain.StatusShipped, "")))

	ok, err := orders.Rate(ctx, "ORD-PPPPPP", "a1", 5)
	require.NoError(t, err)
	assert.False(t, ok, "pending is not rateable")

	ok, err = orders.Rate(ctx, "ORD-SSSSSS", "a2", 5)
	require.NoError(t, err)
	assert.False(t, ok, "someone else's order")

	ok, err = orders.Rate(ctx, "ORD-SSSSSS", "a1", 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = orders.Rate(ctx, "ORD-SSSSSS", "a1", 1)
	require.NoError(t, err)
	assert.False(t, ok, "already rated")

	got, err := orders.Get(ctx, "ORD-SSSSSS")
	require.NoError(t, err)
	assert.True(t, got.IsRated)
	assert.Equal(t, 4, got.Rating)
}

func TestSalesSinceSkipsRejected(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	orders := repos.NewOrderRepo(db)

	zero, err := orders.SalesSince(ctx, "2026-01-01T00:00:00.000000Z")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	require.NoError(t, orders.Insert(ctx, sampleOrder("ORD-OLD000", "a1", domain.StatusPending, "2025-12-31T23:59:59.000000Z")))
	require.NoError(t, orders.Insert(ctx, sampleOrder("ORD-NEW000", "a1", domain.StatusPending, "2026-01-01T08:00:00.000000Z")))
	require.NoError(t, orders.Insert(ctx, sampleOrder("ORD-REJ000", "a1", domain.StatusRejected, "2026-01-01T09:00:00.000000Z")))

	total, err := orders.SalesSince(ctx, "2026-01-01T00:00:00.000000Z")
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("12600")), total.String())
}

func TestSalesSinceFractionalTotals(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	orders := repos.NewOrderRepo(db)
	for i, total := range []string{"0.10", "0.20", "0.70"} {
		o := sampleOrder(fmt.Sprintf("ORD-FRC00%d", i), "a1", domain.StatusPending, "2026-01-01T08:00:00.000000Z")
		o.Items = []domain.OrderLine{{ProductID: "p1", ProductName: "Pin", Quantity: 1, PriceAtPurchase: dec(total)}}
		o.TotalPrice = dec(total)
		require.NoError(t, orders.Insert(ctx, o))
	}
	total, err := orders.SalesSince(ctx, "2026-01-01T00:00:00.000000Z")
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("1")), total.String())
}

func TestInTxRollsBack(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repos.InTx(ctx, db, func(tx *sqlx.Tx) error {
		ok, err := repos.NewProductRepo(tx).DecrementStock(ctx, "prd-teapot", 5)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	qty, err := repos.NewInventoryRepo(db).Qty(ctx, "prd-teapot")
	require.NoError(t, err)
	assert.Equal(t, 20, qty)
}

func TestMissingTableClassified(t *testing.T) {
	db := memdb(t)
	_, err := db.Exec(`DROP TABLE order_items`)
	require.NoError(t, err)

	_, err = repos.NewOrderRepo(db).Count(context.Background())
	require.NoError(t, err, "orders table still present")

	err = repos.NewOrderRepo(db).Insert(context.Background(), sampleOrder("ORD-X00000", "a1", domain.StatusPending, ""))
	assert.Equal(t, repos.KindMissingTable, repos.KindOf(err))
}

func TestNowIsOverridable(t *testing.T) {
	prev := repos.Now
	repos.Now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	t.Cleanup(func() { repos.Now = prev })

	db := memdb(t)
	ctx := context.Background()
	orders := repos.NewOrderRepo(db)
	require.NoError(t, orders.Insert(ctx, sampleOrder("ORD-T00000", "a1", domain.StatusPending, "")))
	got, err := orders.Get(ctx, "ORD-T00000")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04T05:06:07.000000Z", got.CreatedAt)
}
