package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bazaar/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.UserContext())
	if err != nil {
		return fail(c, "categories.list", err)
	}
	return ok(c, cats)
}
