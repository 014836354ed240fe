package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazaar/internal/domain"
	"bazaar/internal/events"
	"bazaar/internal/repos"
	"bazaar/internal/services"
)

func TestPlaceWalletOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	chair := e.product(t, "Chair", "5000", 2)
	buyer := e.buyer(t, "10000")

	require.NoError(t, e.carts.Add("sid", chair.ID, 1))
	o, err := e.orders.Place(ctx, "sid", &buyer, domain.PayWallet)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ORD-[0-9A-Z]{6}$`), o.ID)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.True(t, o.TotalPrice.Equal(dec("5000")))
	assert.Equal(t, "Amina Benali", o.BuyerName)
	assert.Equal(t, 1, e.stock(t, chair.ID))
	assert.True(t, e.balance(t, buyer.ID).Equal(dec("5000")))
	assert.Empty(t, e.carts.View("sid").Items)

	cached, err := e.catalog.Get(chair.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Stock, "cache refreshed after commit")
	assert.Equal(t, []events.Type{events.OrderPlaced}, e.events.Types())
}

func TestPlaceOutOfStockChangesNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	chair := e.product(t, "Chair", "5000", 0)
	buyer := e.buyer(t, "10000")

	require.NoError(t, e.carts.Add("sid", chair.ID, 1))
	_, err := e.orders.Place(ctx, "sid", &buyer, domain.PayWallet)

	var stockErr *services.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Chair", stockErr.Product)
	assert.Equal(t, 0, e.stock(t, chair.ID))
	assert.True(t, e.balance(t, buyer.ID).Equal(dec("10000")))
	assert.Len(t, e.carts.View("sid").Items, 1)
	assert.Equal(t, 0, e.orderCount(t))
	assert.Empty(t, e.events.Types())
}

func TestPlaceRevalidatesAgainstStore(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	chair := e.product(t, "Chair", "5000", 2)
	buyer := e.buyer(t, "0")

	// the cart snapshot says 2 are available; the store has since sold out
	require.NoError(t, e.carts.Add("sid", chair.ID, 2))
	_, err := repos.NewProductRepo(e.db).DecrementStock(ctx, chair.ID, 2)
	require.NoError(t, err)

	_, err = e.orders.Place(ctx, "sid", &buyer, domain.PayCOD)
	var stockErr *services.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, e.orderCount(t))
}

func TestPlaceInsufficientFundsChangesNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	chair := e.product(t, "Chair", "5000", 2)
	buyer := e.buyer(t, "4999.99")

	require.NoError(t, e.carts.Add("sid", chair.ID, 1))
	_, err := e.orders.Place(ctx, "sid", &buyer, domain.PayWallet)
	assert.ErrorIs(t, err, services.ErrInsufficientFunds)
	assert.Equal(t, 2, e.stock(t, chair.ID))
	assert.True(t, e.balance(t, buyer.ID).Equal(dec("4999.99")))
	assert.Equal(t, 0, e.orderCount(t))
	assert.Len(t, e.carts.View("sid").Items, 1)
}

func TestPlaceCODIgnoresBalance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	chair := e.product(t, "Chair", "5000", 2)
	buyer := e.buyer(t, "0")

	require.NoError(t, e.carts.Add("sid", chair.ID, 1))
	o, err := e.orders.Place(ctx, "sid", &buyer, domain.PayCOD)
	require.NoError(t, err)
	assert.Equal(t, domain.PayCOD, o.PaymentMethod)
	assert.True(t, e.balance(t, buyer.ID).IsZero())
	assert.Equal(t, 1, e.stock(t, chair.ID))
}

func TestWalletFractionalAmounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pin := e.product(t, "Pin", "0.10", 5)
	badge := e.product(t, "Badge", "0.20", 5)
	buyer := e.buyer(t, "0")

	_, err := e.accounts.Recharge(ctx, buyer.ID, dec("0.30"))
	require.NoError(t, err)

	require.NoError(t, e.carts.Add("sid", pin.ID, 1))
	_, err = e.orders.Place(ctx, "sid", &buyer, domain.PayWallet)
	require.NoError(t, err)
	assert.Equal(t, "0.20", e.balance(t, buyer.ID).StringFixed(2))
	assert.True(t, e.balance(t, buyer.ID).Equal(dec("0.2")), e.balance(t, buyer.ID).String())

	require.NoError(t, e.carts.Add("sid", badge.ID, 1))
	_, err = e.orders.Place(ctx, "sid", &buyer, domain.PayWallet)
	require.NoError(t, err, "a balance equal to the total is enough")
	assert.True(t, e.balance(t, buyer.ID).IsZero(), e.balance(t, buyer.ID).String())

	st, err := services.NewStatsService(e.db).Dashboard(ctx)
	require.NoError(t, err)
	assert.True(t, st.TodaySales.Equal(dec("0.3")), st.TodaySales.String())
}

func TestPlacePreconditionOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := e.buyer(t, "0")

	_, err := e.orders.Place(ctx, "sid", nil, "Bitcoin")
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	_, err = e.orders.Place(ctx, "sid", &buyer, "Bitcoin")
	assert.ErrorIs(t, err, services.ErrInvalidPayment)

	_, err = e.orders.Place(ctx, "sid", &buyer, domain.PayCOD)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestTotalFrozenAgainstPriceChanges(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	chair := e.product(t, "Chair", "5000", 5)
	lamp := e.product(t, "Lamp", "1250.50", 5)
	buyer := e.buyer(t, "0")

	require.NoError(t, e.carts.Add("sid", chair.ID, 2))
	require.NoError(t, e.carts.Add("sid", lamp.ID, 1))
	require.NoError(t, e.carts.Add("sid", lamp.ID, 1))
	o, err := e.orders.Place(ctx, "sid", &buyer, domain.PayCOD)
	require.NoError(t, err)
	assert.True(t, o.TotalPrice.Equal(dec("12501")), o.TotalPrice.String())

	_, err = e.catalog.Upsert(ctx, services.ProductInput{ID: chair.ID, Name: "Chair", Price: dec("9999"), Category: "Furniture", Stock: 3})
	require.NoError(t, err)

	again, err := e.orders.Get(ctx, buyer, o.ID)
	require.NoError(t, err)
	assert.True(t, again.TotalPrice.Equal(dec("12501")))
	assert.True(t, domain.LinesTotal(again.Items).Equal(again.TotalPrice))
}

func TestTransitions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	chair := e.product(t, "Chair", "5000", 5)
	buyer := e.buyer(t, "0")
	require.NoError(t, e.carts.Add("sid", chair.ID, 1))
	o, err := e.orders.Place(ctx, "sid", &buyer, domain.PayCOD)
	require.NoError(t, err)

	_, err = e.orders.Transition(ctx, o.ID, domain.EventShip)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	for _, step := range []struct {
		ev   domain.OrderEvent
		want domain.OrderStatus
	}{
		{domain.EventAccept, domain.StatusAccepted},
		{domain.EventShip, domain.StatusShipped},
		{domain.EventComplete, domain.StatusCompleted},
	} {
		got, err := e.orders.Transition(ctx, o.ID, step.ev)
		require.NoError(t, err)
		assert.Equal(t, step.want, got.Status)
	}

	_, err = e.orders.Transition(ctx, o.ID, domain.EventReject)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = e.orders.Transition(ctx, "ORD-NOPE00", domain.EventAccept)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRateOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	chair := e.product(t, "Chair", "5000", 5)
	buyer := e.buyer(t, "0")
	other := e.buyer(t, "0")
	require.NoError(t, e.carts.Add("sid", chair.ID, 1))
	o, err := e.orders.Place(ctx, "sid", &buyer, domain.PayCOD)
	require.NoError(t, err)

	_, err = e.orders.Rate(ctx, buyer, o.ID, 5)
	assert.ErrorIs(t, err, services.ErrNotRateable, "still pending")

	_, err = e.orders.Transition(ctx, o.ID, domain.EventAccept)
	require.NoError(t, err)

	_, err = e.orders.Rate(ctx, other, o.ID, 5)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = e.orders.Rate(ctx, buyer, o.ID, 6)
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	rated, err := e.orders.Rate(ctx, buyer, o.ID, 2)
	require.NoError(t, err)
	assert.True(t, rated.IsRated)
	assert.Equal(t, 2, rated.Rating)

	_, err = e.orders.Rate(ctx, buyer, o.ID, 5)
	assert.ErrorIs(t, err, services.ErrAlreadyRated)

	p, err := e.catalog.Get(chair.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.ReviewsCount)
	assert.InDelta(t, 2.0, p.Rating, 0.0001)
	assert.Contains(t, e.events.Types(), events.OrderRated)
}

func TestOrderVisibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	chair := e.product(t, "Chair", "5000", 5)
	buyer := e.buyer(t, "0")
	other := e.buyer(t, "0")
	require.NoError(t, e.carts.Add("sid", chair.ID, 1))
	o, err := e.orders.Place(ctx, "sid", &buyer, domain.PayCOD)
	require.NoError(t, err)

	_, err = e.orders.Get(ctx, other, o.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	admin := domain.Account{ID: "adm", IsAdmin: true}
	got, err := e.orders.Get(ctx, admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	mine, err := e.orders.ListForBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := e.orders.ListForBuyer(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestNewOrderIDShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := services.NewOrderID()
		assert.Regexp(t, `^ORD-[0-9A-Z]{6}$`, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 195)
}
