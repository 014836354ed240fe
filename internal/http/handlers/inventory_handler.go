package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "bazaar/internal/log"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type InventoryHandler struct {
	Inv     *services.InventoryService
	Catalog *services.CatalogService
}

// GET /api/v1/availability?productId=
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID := strings.TrimSpace(c.Query("productId"))
	if productID == "" {
		return invalid(c, "productId")
	}
	if _, valid := validate.ID(productID); !valid {
		return invalid(c, "productId")
	}
	avail, err := h.Inv.CheckAvailability(c.UserContext(), productID)
	if err != nil {
		return fail(c, "availability.check", err)
	}
	return ok(c, avail)
}

// GET /api/v1/admin/inventory
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	rows, err := h.Inv.List(c.UserContext())
	if err != nil {
		return fail(c, "admin.inventory.list", err)
	}
	return ok(c, rows)
}

// PUT /api/v1/admin/inventory/:id
func (h *InventoryHandler) SetStock(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return invalid(c, "product")
	}
	var in struct {
		Stock *int `json:"stock"`
	}
	if err := c.BodyParser(&in); err != nil || in.Stock == nil {
		return invalid(c, "stock")
	}
	p, err := h.Catalog.SetStock(c.UserContext(), id, *in.Stock)
	if err != nil {
		return fail(c, "admin.inventory.save", err)
	}
	applog.Audit(c, "admin.inventory.save", map[string]any{"product": id, "qty": p.Stock})
	return ok(c, p)
}
