package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"bazaar/internal/domain"
	"bazaar/internal/i18n"
	applog "bazaar/internal/log"
	"bazaar/internal/services"
)

const (
	sidCookie = "sid"
	userKey   = "user"
	localeKey = "locale"
)

// Session issues the sid cookie, resolves the signed-in account and the
// visitor's locale for every request.
func Session(auth *services.AuthService, accounts *services.AccountService, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, fresh := ensureSID(c, secure)
		c.Locals(sidCookie, sid)

		if !fresh {
			if u, err := auth.CurrentUser(c.UserContext(), sid); err == nil {
				c.Locals(userKey, &u)
				c.Locals(applog.UserKey, u.ID)
			}
		}

		loc, chosen := i18n.Parse(c.Query("lang"))
		if !chosen && !fresh {
			l, ok, err := accounts.ChosenLocale(c.UserContext(), sid)
			if err == nil && ok {
				loc, chosen = l, true
			}
		}
		if !chosen {
			loc = i18n.Match(c.Get(fiber.HeaderAcceptLanguage))
		}
		c.Locals(localeKey, loc)
		return c.Next()
	}
}

func ensureSID(c *fiber.Ctx, secure bool) (string, bool) {
	sid := c.Cookies(sidCookie)
	if sid != "" {
		if _, err := uuid.Parse(sid); err == nil {
			return sid, false
		}
		applog.Security(c, "session.cookie.invalid", nil)
	}
	sid = uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   secure,
	})
	return sid, true
}

func sessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sidCookie).(string)
	return sid
}

func currentUser(c *fiber.Ctx) *domain.Account {
	u, _ := c.Locals(userKey).(*domain.Account)
	return u
}

func locale(c *fiber.Ctx) domain.Locale {
	if l, ok := c.Locals(localeKey).(domain.Locale); ok {
		return l
	}
	return domain.DefaultLocale
}

// RequireUser rejects anonymous sessions.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			if !isAPI(c) {
				return c.Redirect("/")
			}
			return fail(c, "access.user", services.ErrNotAuthenticated)
		}
		return c.Next()
	}
}

// RequireAdmin allows only the administrator account. Pages redirect
// anonymous visitors; the API answers with the error envelope.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			if !isAPI(c) {
				return c.Redirect("/")
			}
			return fail(c, "access.admin", services.ErrNotAuthenticated)
		}
		if !u.IsAdmin {
			applog.Security(c, "access.denied.admin", map[string]any{"account": u.ID})
			if !isAPI(c) {
				c.Status(fiber.StatusForbidden)
				return render(c, "notfound", fiber.Map{"Message": i18n.T(locale(c), i18n.Forbidden)})
			}
			return failure(c, fiber.StatusForbidden, "FORBIDDEN", i18n.T(locale(c), i18n.Forbidden))
		}
		return c.Next()
	}
}
