package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusAccepted  OrderStatus = "Accepted"
	StatusRejected  OrderStatus = "Rejected"
	StatusShipped   OrderStatus = "Shipped"
	StatusCompleted OrderStatus = "Completed"
)

type PaymentMethod string

const (
	PayWallet PaymentMethod = "Wallet"
	PayCOD    PaymentMethod = "COD"
)

func (m PaymentMethod) Valid() bool { return m == PayWallet || m == PayCOD }

type Order struct {
	ID            string          `db:"id" json:"id"`
	BuyerID       string          `db:"buyer_id" json:"buyer_id"`
	BuyerName     string          `db:"buyer_name" json:"buyer_name"`
	BuyerPhone    string          `db:"buyer_phone" json:"buyer_phone"`
	TotalPrice    decimal.Decimal `db:"total_price" json:"total_price"`
	Status        OrderStatus     `db:"status" json:"status"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"payment_method"`
	IsRated       bool            `db:"is_rated" json:"is_rated"`
	Rating        int             `db:"rating" json:"rating,omitempty"`
	CreatedAt     string          `db:"created_at" json:"date"`
	Items         []OrderLine     `db:"-" json:"items"`
}

// OrderLine is a frozen copy of a cart line taken at submission time.
type OrderLine struct {
	OrderID         string          `db:"order_id" json:"-"`
	ProductID       string          `db:"product_id" json:"product_id"`
	ProductName     string          `db:"product_name" json:"name"`
	Category        string          `db:"category" json:"category"`
	Image           string          `db:"image" json:"image"`
	Quantity        int             `db:"quantity" json:"quantity"`
	PriceAtPurchase decimal.Decimal `db:"price_at_purchase" json:"price"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.PriceAtPurchase.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LinesTotal sums price-at-purchase × quantity.
func LinesTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ShortID is the tail shown to buyers in notifications.
func (o Order) ShortID() string {
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[len(o.ID)-6:]
}

// OrderEvent is an admin action on an order.
type OrderEvent string

const (
	EventAccept   OrderEvent = "accept"
	EventReject   OrderEvent = "reject"
	EventShip     OrderEvent = "ship"
	EventComplete OrderEvent = "complete"
)

var ErrInvalidTransition = errors.New("invalid order transition")

var transitions = map[OrderStatus]map[OrderEvent]OrderStatus{
	StatusPending: {
		EventAccept: StatusAccepted,
		EventReject: StatusRejected,
	},
	StatusAccepted: {EventShip: StatusShipped},
	StatusShipped:  {EventComplete: StatusCompleted},
}

// Transition returns the status reached by applying ev to from.
func Transition(from OrderStatus, ev OrderEvent) (OrderStatus, error) {
	to, ok := transitions[from][ev]
	if !ok {
		return "", fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, from)
	}
	return to, nil
}

// Events lists the admin actions available from a status.
func Events(from OrderStatus) []OrderEvent {
	var out []OrderEvent
	for _, ev := range []OrderEvent{EventAccept, EventReject, EventShip, EventComplete} {
		if _, ok := transitions[from][ev]; ok {
			out = append(out, ev)
		}
	}
	return out
}

// Terminal reports whether no further status change is possible.
func (s OrderStatus) Terminal() bool { return s == StatusRejected || s == StatusCompleted }

// Rateable reports whether a buyer may rate an order in this status.
func (s OrderStatus) Rateable() bool {
	return s == StatusAccepted || s == StatusShipped || s == StatusCompleted
}

// CanRate gates the rating action: right status and not rated yet.
func (o Order) CanRate() bool { return o.Status.Rateable() && !o.IsRated }
