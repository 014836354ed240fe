package services

import (
	"context"

	"github.com/jmoiron/sqlx"

	"bazaar/internal/domain"
	"bazaar/internal/i18n"
	"bazaar/internal/repos"
)

type Notification struct {
	ID      string             `json:"id"`
	Kind    string             `json:"kind"` // order | stock
	Title   string             `json:"title"`
	Message string             `json:"message"`
	OrderID string             `json:"order_id,omitempty"`
	Status  domain.OrderStatus `json:"status,omitempty"`
	Date    string             `json:"date,omitempty"`
}

// NotificationService derives notifications from current order and stock
// state; nothing is stored.
type NotificationService struct {
	Orders *repos.OrderRepo
	Prods  *repos.ProductRepo
}

func NewNotificationService(db *sqlx.DB) *NotificationService {
	return &NotificationService{Orders: repos.NewOrderRepo(db), Prods: repos.NewProductRepo(db)}
}

// ForBuyer returns one notification per order of the buyer, newest first.
func (s *NotificationService) ForBuyer(ctx context.Context, buyerID string, loc domain.Locale) ([]Notification, error) {
	orders, err := s.Orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	out := make([]Notification, 0, len(orders))
	for _, o := range orders {
		out = append(out, BuyerNotification(o, loc))
	}
	return out, nil
}

func BuyerNotification(o domain.Order, loc domain.Locale) Notification {
	title := i18n.NotifUpdate
	switch o.Status {
	case domain.StatusAccepted:
		title = i18n.NotifAccepted
	case domain.StatusShipped:
		title = i18n.NotifShipped
	}
	return Notification{
		ID:      "order-" + o.ID,
		Kind:    "order",
		Title:   i18n.T(loc, title),
		Message: i18n.T(loc, i18n.NotifMessage, o.ShortID(), o.Status),
		OrderID: o.ID,
		Status:  o.Status,
		Date:    o.CreatedAt,
	}
}

// AdminRecentOrders is how many new-order alerts the admin sees.
const AdminRecentOrders = 5

// ForAdmin lists the latest orders followed by low-stock alerts.
func (s *NotificationService) ForAdmin(ctx context.Context, loc domain.Locale) ([]Notification, error) {
	orders, err := s.Orders.Latest(ctx, AdminRecentOrders)
	if err != nil {
		return nil, err
	}
	low, err := s.Prods.LowStock(ctx, LowStockBelow)
	if err != nil {
		return nil, err
	}
	out := make([]Notification, 0, len(orders)+len(low))
	for _, o := range orders {
		out = append(out, Notification{
			ID:      "order-" + o.ID,
			Kind:    "order",
			Title:   i18n.T(loc, i18n.AdminNewOrder),
			Message: i18n.T(loc, i18n.AdminNewOrderMsg, o.BuyerName, o.BuyerPhone, o.TotalPrice.StringFixed(2)),
			OrderID: o.ID,
			Status:  o.Status,
			Date:    o.CreatedAt,
		})
	}
	for _, p := range low {
		out = append(out, Notification{
			ID:      "stock-" + p.ID,
			Kind:    "stock",
			Title:   i18n.T(loc, i18n.AdminLowStock),
			Message: i18n.T(loc, i18n.AdminLowStockMsg, p.Name, p.Stock),
		})
	}
	return out, nil
}
