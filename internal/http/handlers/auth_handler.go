package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/i18n"
	applog "bazaar/internal/log"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type AuthHandler struct {
	Auth   *services.AuthService
	Secure bool
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.Registration
	if err := c.BodyParser(&in); err != nil {
		return invalid(c, "body")
	}
	acc, err := h.Auth.Register(c.UserContext(), sessionID(c), in)
	if err != nil {
		applog.Security(c, "auth.register.fail", map[string]any{"email": in.Email, "reason": err.Error()})
		return fail(c, "auth.register", err)
	}
	applog.Audit(c, "auth.register", map[string]any{"account": acc.ID})
	return created(c, acc)
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return invalid(c, "body")
	}
	if _, ok := validate.Email(in.Email); !ok || in.Password == "" {
		applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return fail(c, "auth.login", services.ErrBadCreds)
	}
	acc, err := h.Auth.Login(c.UserContext(), sessionID(c), in.Email, in.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return fail(c, "auth.login", err)
	}
	applog.Audit(c, "auth.login.success", map[string]any{"account": acc.ID, "admin": acc.IsAdmin})
	return ok(c, acc)
}

// LoginLimited answers a throttled login attempt.
func (h *AuthHandler) LoginLimited(c *fiber.Ctx) error {
	applog.Security(c, "rate.login.hit", nil)
	return failure(c, fiber.StatusTooManyRequests, "RATE_LIMITED", i18n.T(locale(c), i18n.RateLimited))
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := sessionID(c)
	if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
		return fail(c, "auth.logout", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.Secure,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", nil)
	return ok(c, nil)
}

// GET /api/v1/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return fail(c, "auth.me", services.ErrNotAuthenticated)
	}
	return ok(c, u)
}
