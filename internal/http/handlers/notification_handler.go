package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bazaar/internal/services"
)

type NotificationHandler struct {
	Notes *services.NotificationService
}

// GET /api/v1/notifications
func (h *NotificationHandler) Buyer(c *fiber.Ctx) error {
	list, err := h.Notes.ForBuyer(c.UserContext(), currentUser(c).ID, locale(c))
	if err != nil {
		return fail(c, "notifications.buyer", err)
	}
	return ok(c, list)
}

// GET /api/v1/admin/notifications
func (h *NotificationHandler) Admin(c *fiber.Ctx) error {
	list, err := h.Notes.ForAdmin(c.UserContext(), locale(c))
	if err != nil {
		return fail(c, "notifications.admin", err)
	}
	return ok(c, list)
}
