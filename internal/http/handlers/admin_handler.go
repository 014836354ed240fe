package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/domain"
	"bazaar/internal/i18n"
	applog "bazaar/internal/log"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type AdminHandler struct {
	Orders    *services.OrderService
	Catalog   *services.CatalogService
	Images    *services.ImageService
	Stats     *services.StatsService
	Describer *services.Describer
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	st, err := h.Stats.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	orders, err := h.Orders.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	if len(orders) > 25 {
		orders = orders[:25]
	}
	return render(c, "admin_dashboard", fiber.Map{
		"Stats":    st,
		"Orders":   orders,
		"Currency": i18n.T(locale(c), i18n.Currency),
	})
}

// GET /api/v1/admin/stats
func (h *AdminHandler) StatsJSON(c *fiber.Ctx) error {
	st, err := h.Stats.Dashboard(c.UserContext())
	if err != nil {
		return fail(c, "admin.stats", err)
	}
	return ok(c, st)
}

// GET /api/v1/admin/orders
func (h *AdminHandler) OrdersJSON(c *fiber.Ctx) error {
	orders, err := h.Orders.ListAll(c.UserContext())
	if err != nil {
		return fail(c, "admin.orders.list", err)
	}
	if s := domain.OrderStatus(c.Query("status")); s != "" {
		filtered := make([]domain.Order, 0, len(orders))
		for _, o := range orders {
			if o.Status == s {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	return ok(c, orders)
}

// POST /api/v1/admin/orders/:id/:event
func (h *AdminHandler) Transition(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	ev := domain.OrderEvent(strings.ToLower(c.Params("event")))
	o, err := h.Orders.Transition(c.UserContext(), id, ev)
	if err != nil {
		return fail(c, "admin.orders.update", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "event": ev, "status": o.Status})
	return ok(c, o)
}

// PUT /api/v1/admin/products creates or replaces a product.
func (h *AdminHandler) UpsertProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalid(c, "body")
	}
	p, err := h.Catalog.Upsert(c.UserContext(), in)
	if err != nil {
		return fail(c, "admin.products.save", err)
	}
	applog.Audit(c, "admin.products.save", map[string]any{"product": p.ID, "price": p.Price.StringFixed(2), "stock": p.Stock})
	return ok(c, p)
}

// DELETE /api/v1/admin/products/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return invalid(c, "product")
	}
	if err := h.Catalog.Delete(c.UserContext(), id); err != nil {
		return fail(c, "admin.products.delete", err)
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product": id})
	return ok(c, fiber.Map{"id": id})
}

// POST /api/v1/admin/products/describe always answers 200 with display
// text; generator failures become a localized message.
func (h *AdminHandler) Describe(c *fiber.Ctx) error {
	var in struct {
		Name     string `json:"name"`
		Category string `json:"category"`
		Locale   string `json:"locale"`
	}
	if err := c.BodyParser(&in); err != nil {
		return invalid(c, "body")
	}
	name, okName := validate.Label(in.Name, 120)
	category, okCat := validate.Label(in.Category, 60)
	if !okName || !okCat {
		return fail(c, "admin.describe", services.ErrMissingFields)
	}
	loc := locale(c)
	if l, valid := i18n.Parse(in.Locale); valid {
		loc = l
	}
	text := h.Describer.Describe(c.UserContext(), name, category, loc)
	return ok(c, fiber.Map{"description": text})
}

// POST /api/v1/admin/products/image stores a data URL and returns the
// reference to use in the product form.
func (h *AdminHandler) UploadImage(c *fiber.Ctx) error {
	var in struct {
		Image string `json:"image"`
	}
	if err := c.BodyParser(&in); err != nil {
		return invalid(c, "body")
	}
	if !strings.HasPrefix(strings.TrimSpace(in.Image), "data:") {
		return fail(c, "admin.products.image", services.ErrInvalidImage)
	}
	ref, err := h.Images.Resolve(c.UserContext(), "products", in.Image)
	if err != nil {
		return fail(c, "admin.products.image", err)
	}
	applog.Audit(c, "admin.products.image", map[string]any{"ref": ref})
	return created(c, fiber.Map{"image": ref})
}
