package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bazaar/internal/log"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type WishlistHandler struct {
	Wish *services.WishlistService
}

// GET /api/v1/favorites
func (h *WishlistHandler) List(c *fiber.Ctx) error {
	return ok(c, h.Wish.List(sessionID(c)))
}

// POST /api/v1/favorites/:productId toggles membership.
func (h *WishlistHandler) Toggle(c *fiber.Ctx) error {
	pid, valid := validate.ID(c.Params("productId"))
	if !valid {
		return invalid(c, "productId")
	}
	on, err := h.Wish.Toggle(sessionID(c), pid)
	if err != nil {
		return fail(c, "favorites.toggle", err)
	}
	applog.Info(c, "favorites.toggle", map[string]any{"product": pid, "favorite": on})
	return ok(c, fiber.Map{"productId": pid, "favorite": on})
}
