package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// GET /api/v1/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	return ok(c, h.Cart.View(sessionID(c)))
}

// POST /api/v1/cart adds qty of a product, or sets the quantity when
// "set" is true.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in struct {
		ProductID string `json:"productId"`
		Qty       int    `json:"qty"`
		Set       bool   `json:"set"`
	}
	if err := c.BodyParser(&in); err != nil {
		return invalid(c, "body")
	}
	pid, valid := validate.ID(in.ProductID)
	if !valid {
		return invalid(c, "productId")
	}
	sid := sessionID(c)
	var err error
	if in.Set {
		err = h.Cart.SetQty(sid, pid, in.Qty)
	} else {
		err = h.Cart.Add(sid, pid, in.Qty)
	}
	if err != nil {
		return fail(c, "cart.add", err)
	}
	return ok(c, h.Cart.View(sid))
}

// DELETE /api/v1/cart/:productId
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := sessionID(c)
	h.Cart.Remove(sid, c.Params("productId"))
	return ok(c, h.Cart.View(sid))
}
