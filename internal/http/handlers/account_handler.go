package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"bazaar/internal/domain"
	"bazaar/internal/i18n"
	applog "bazaar/internal/log"
	"bazaar/internal/services"
)

type AccountHandler struct {
	Accounts *services.AccountService
}

// PUT /api/v1/me/password
func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	var in struct {
		Current string `json:"current_password"`
		Next    string `json:"new_password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return invalid(c, "body")
	}
	u := currentUser(c)
	if err := h.Accounts.ChangePassword(c.UserContext(), u.ID, in.Current, in.Next); err != nil {
		applog.Security(c, "account.password.fail", map[string]any{"reason": err.Error()})
		return fail(c, "account.password", err)
	}
	applog.Audit(c, "account.password", nil)
	return ok(c, fiber.Map{"message": i18n.T(locale(c), i18n.Updated)})
}

// PUT /api/v1/me/avatar
func (h *AccountHandler) SetAvatar(c *fiber.Ctx) error {
	var in struct {
		Image string `json:"image"`
	}
	if err := c.BodyParser(&in); err != nil {
		return invalid(c, "body")
	}
	ref, err := h.Accounts.SetAvatar(c.UserContext(), currentUser(c).ID, in.Image)
	if err != nil {
		return fail(c, "account.avatar", err)
	}
	applog.Info(c, "account.avatar", nil)
	return ok(c, fiber.Map{"avatar": ref})
}

// POST /api/v1/me/wallet/recharge
func (h *AccountHandler) Recharge(c *fiber.Ctx) error {
	var in struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fail(c, "wallet.recharge", services.ErrInvalidAmount)
	}
	acc, err := h.Accounts.Recharge(c.UserContext(), currentUser(c).ID, in.Amount)
	if err != nil {
		return fail(c, "wallet.recharge", err)
	}
	applog.Audit(c, "wallet.recharge", map[string]any{"amount": in.Amount.StringFixed(2), "balance": acc.Balance.StringFixed(2)})
	return ok(c, acc)
}

// GET /api/v1/preferences
func (h *AccountHandler) Preferences(c *fiber.Ctx) error {
	p, err := h.Accounts.Preferences(c.UserContext(), sessionID(c))
	if err != nil {
		return fail(c, "preferences.get", err)
	}
	p.Locale = locale(c)
	return ok(c, p)
}

// PUT /api/v1/preferences saves the locale and theme. An omitted locale
// pins the one currently shown.
func (h *AccountHandler) SetPreferences(c *fiber.Ctx) error {
	var in struct {
		Locale string       `json:"locale"`
		Theme  domain.Theme `json:"theme"`
	}
	if err := c.BodyParser(&in); err != nil {
		return invalid(c, "body")
	}
	loc := locale(c)
	if in.Locale != "" {
		l, ok := i18n.Parse(in.Locale)
		if !ok {
			return invalid(c, "locale")
		}
		loc = l
	}
	p, err := h.Accounts.SetPreferences(c.UserContext(), sessionID(c), loc, in.Theme)
	if err != nil {
		return fail(c, "preferences.set", err)
	}
	c.Locals(localeKey, p.Locale)
	return ok(c, p)
}
