package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/products[?q=&category=]
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	q := validate.Q(c.Query("q"))
	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		if _, valid := validate.Label(category, 60); !valid {
			return invalid(c, "category")
		}
	}
	products := h.Catalog.Search(q, category)
	return ok(c, fiber.Map{"products": products, "count": len(products)})
}
