package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/domain"
	"bazaar/internal/i18n"
	applog "bazaar/internal/log"
	"bazaar/internal/services"
)

type OrderHandler struct {
	Order *services.OrderService
}

// POST /api/v1/orders submits the session cart.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in struct {
		PaymentMethod domain.PaymentMethod `json:"payment_method"`
	}
	if err := c.BodyParser(&in); err != nil {
		return invalid(c, "body")
	}
	o, err := h.Order.Place(c.UserContext(), sessionID(c), currentUser(c), in.PaymentMethod)
	if err != nil {
		applog.Info(c, "order.place.fail", map[string]any{"reason": err.Error()})
		return fail(c, "order.place", err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": o.ID,
		"total":    o.TotalPrice.StringFixed(2),
		"method":   o.PaymentMethod,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    o,
		"message": i18n.T(locale(c), i18n.OrderPlaced),
	})
}

// GET /api/v1/orders lists the buyer's own orders, newest first.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Order.ListForBuyer(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "orders.history", err)
	}
	return ok(c, orders)
}

// GET /api/v1/orders/:id
func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	o, err := h.Order.Get(c.UserContext(), *currentUser(c), strings.TrimSpace(c.Params("id")))
	if err != nil {
		return fail(c, "order.detail", err)
	}
	return ok(c, fiber.Map{"order": o, "can_rate": o.CanRate() && o.BuyerID == currentUser(c).ID})
}

// POST /api/v1/orders/:id/rating
func (h *OrderHandler) Rate(c *fiber.Ctx) error {
	var in struct {
		Rating int `json:"rating"`
	}
	if err := c.BodyParser(&in); err != nil {
		return invalid(c, "body")
	}
	o, err := h.Order.Rate(c.UserContext(), *currentUser(c), c.Params("id"), in.Rating)
	if err != nil {
		return fail(c, "order.rate", err)
	}
	applog.Info(c, "order.rate", map[string]any{"order_id": o.ID, "rating": o.Rating})
	return ok(c, o)
}

// GET /orders/:id/invoice renders a printable invoice.
func (h *OrderHandler) Invoice(c *fiber.Ctx) error {
	o, err := h.Order.Get(c.UserContext(), *currentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return render(c, "invoice", fiber.Map{
		"Order":    o,
		"Currency": i18n.T(locale(c), i18n.Currency),
	})
}
