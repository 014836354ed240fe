package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bazaar/internal/domain"
	applog "bazaar/internal/log"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Inv     *services.InventoryService
}

type productDetail struct {
	domain.Product
	Availability domain.Availability `json:"availability"`
}

// GET /api/v1/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return fail(c, "product.detail", services.ErrNotFound)
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return fail(c, "product.detail", err)
	}
	return ok(c, productDetail{Product: p, Availability: services.Availability(p.Stock)})
}
