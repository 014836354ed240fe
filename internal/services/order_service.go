package services

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bazaar/internal/domain"
	"bazaar/internal/events"
	applog "bazaar/internal/log"
	"bazaar/internal/repos"
	"bazaar/internal/validate"
)

type OrderService struct {
	DB      *sqlx.DB
	Orders  *repos.OrderRepo
	Carts   *CartService
	Catalog *CatalogService
	Events  events.Publisher
}

func NewOrderService(db *sqlx.DB, carts *CartService, catalog *CatalogService, pub events.Publisher) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &OrderService{DB: db, Orders: repos.NewOrderRepo(db), Carts: carts, Catalog: catalog, Events: pub}
}

// NewOrderID returns "ORD-" followed by six upper-case base-36 characters.
func NewOrderID() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8]) % 2176782336 // 36^6
	s := strings.ToUpper(strconv.FormatUint(n, 36))
	return "ORD-" + strings.Repeat("0", 6-len(s)) + s
}

// Place turns the session cart into an order. Stock, order rows and the
// wallet debit commit together or not at all; the cart is cleared only after
// the commit.
func (s *OrderService) Place(ctx context.Context, sid string, buyer *domain.Account, method domain.PaymentMethod) (domain.Order, error) {
	if buyer == nil || buyer.ID == "" {
		return domain.Order{}, ErrNotAuthenticated
	}
	if !method.Valid() {
		return domain.Order{}, ErrInvalidPayment
	}
	cart := s.Carts.State.Lines(sid)
	if len(cart) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	order := domain.Order{
		ID:            NewOrderID(),
		BuyerID:       buyer.ID,
		BuyerName:     buyer.FullName(),
		BuyerPhone:    buyer.Phone,
		Status:        domain.StatusPending,
		PaymentMethod: method,
		CreatedAt:     repos.Now().Format(repos.TimeLayout),
	}

	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		products := repos.NewProductRepo(tx)
		accounts := repos.NewAccountRepo(tx)

		lines := make([]domain.OrderLine, 0, len(cart))
		for _, l := range cart {
			p, err := products.Get(ctx, l.ID)
			if errors.Is(err, ErrNotFound) {
				return &InsufficientStockError{ProductID: l.ID, Product: l.Name, Wanted: l.Quantity}
			}
			if err != nil {
				return err
			}
			if p.Stock < l.Quantity {
				return &InsufficientStockError{ProductID: p.ID, Product: p.Name, Wanted: l.Quantity, Available: p.Stock}
			}
			lines = append(lines, domain.OrderLine{
				ProductID:       p.ID,
				ProductName:     p.Name,
				Category:        p.Category,
				Image:           p.Image,
				Quantity:        l.Quantity,
				PriceAtPurchase: p.Price,
			})
		}
		order.Items = lines
		order.TotalPrice = domain.LinesTotal(lines)

		if method == domain.PayWallet {
			acc, err := accounts.ByID(ctx, buyer.ID)
			if err != nil {
				return err
			}
			if acc.Balance.LessThan(order.TotalPrice) {
				return ErrInsufficientFunds
			}
		}

		for _, l := range lines {
			ok, err := products.DecrementStock(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{ProductID: l.ProductID, Product: l.ProductName, Wanted: l.Quantity}
			}
		}
		if err := repos.NewOrderRepo(tx).Insert(ctx, order); err != nil {
			return err
		}
		if method == domain.PayWallet && order.TotalPrice.IsPositive() {
			ok, err := accounts.Debit(ctx, buyer.ID, order.TotalPrice)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientFunds
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.Carts.Clear(sid)
	ids := make([]string, len(order.Items))
	for i, l := range order.Items {
		ids[i] = l.ProductID
	}
	s.Catalog.RefreshProducts(ctx, ids...)
	s.Events.Publish(ctx, events.FromOrder(events.OrderPlaced, order))
	return order, nil
}

// Transition applies an admin event. The status update is guarded on the
// status read, so two admins cannot move the same order twice.
func (s *OrderService) Transition(ctx context.Context, orderID string, ev domain.OrderEvent) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	to, err := domain.Transition(o.Status, ev)
	if err != nil {
		return domain.Order{}, err
	}
	ok, err := s.Orders.UpdateStatus(ctx, o.ID, o.Status, to)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %s changed concurrently", domain.ErrInvalidTransition, o.ID)
	}
	o.Status = to
	s.Events.Publish(ctx, events.FromOrder(events.OrderStatusChanged, o))
	return o, nil
}

// Rate records the buyer's stars on the order and folds them into each
// purchased product's rating.
func (s *OrderService) Rate(ctx context.Context, buyer domain.Account, orderID string, stars int) (domain.Order, error) {
	if !validate.Stars(stars) {
		return domain.Order{}, ErrInvalidInput
	}
	var o domain.Order
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := repos.NewOrderRepo(tx)
		var err error
		if o, err = orders.Get(ctx, orderID); err != nil {
			return err
		}
		switch {
		case o.BuyerID != buyer.ID:
			return ErrNotFound
		case o.IsRated:
			return ErrAlreadyRated
		case !o.Status.Rateable():
			return ErrNotRateable
		}
		ok, err := orders.Rate(ctx, o.ID, buyer.ID, stars)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyRated
		}
		products := repos.NewProductRepo(tx)
		for _, l := range o.Items {
			if err := products.AddReview(ctx, l.ProductID, stars); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	o.IsRated, o.Rating = true, stars

	ids := make([]string, len(o.Items))
	for i, l := range o.Items {
		ids[i] = l.ProductID
	}
	s.Catalog.RefreshProducts(ctx, ids...)
	s.Events.Publish(ctx, events.FromOrder(events.OrderRated, o))
	return o, nil
}

// Get returns an order its buyer (or an admin) may see. Other buyers get
// ErrNotFound so order ids cannot be probed.
func (s *OrderService) Get(ctx context.Context, viewer domain.Account, id string) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !viewer.IsAdmin && o.BuyerID != viewer.ID {
		applog.Security(nil, "order.view.denied", map[string]any{"order_id": id, "viewer": viewer.ID})
		return domain.Order{}, ErrNotFound
	}
	return o, nil
}

func (s *OrderService) ListForBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return s.Orders.ListByBuyer(ctx, buyerID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.Orders.List(ctx)
}
