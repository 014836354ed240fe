package handlers

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"bazaar/internal/i18n"
	applog "bazaar/internal/log"
)

// Options tune the middleware chain. Zero limits take the production
// defaults: 60 requests a minute per IP and 5 logins per 10 minutes.
type Options struct {
	Views          fiber.Views
	MediaDir       string
	AllowedOrigins string
	CookieSecure   bool
	AccessLog      bool

	GlobalLimit int
	LoginLimit  int
}

const maxBody = 1 << 20 // 1 MiB

func NewApp(d *Deps, opts Options) *fiber.App {
	if opts.GlobalLimit == 0 {
		opts.GlobalLimit = 60
	}
	if opts.LoginLimit == 0 {
		opts.LoginLimit = 5
	}

	// Immutable: sids and params outlive the request as session state keys.
	app := fiber.New(fiber.Config{
		Immutable:    true,
		Views:        opts.Views,
		BodyLimit:    maxBody,
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-CSRF-Token",
		AllowCredentials: opts.AllowedOrigins != "" && opts.AllowedOrigins != "*",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        opts.GlobalLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/media/") || c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return failure(c, fiber.StatusTooManyRequests, "RATE_LIMITED", i18n.T(locale(c), i18n.RateLimited))
		},
	}))
	app.Use(Session(d.Auth, d.Accounts, opts.CookieSecure))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   opts.CookieSecure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
			return failure(c, fiber.StatusForbidden, "CSRF_FAILED", i18n.T(locale(c), i18n.CSRFFailed))
		},
	}))

	// ---------- Static media ----------
	if opts.MediaDir != "" {
		app.Get("/media/*", mediaHandler(opts.MediaDir))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api/v1")

	// Public catalog
	api.Get("/products", d.SearchHandler.Search)
	api.Get("/products/:id", d.ProductHandler.Detail)
	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/availability", d.InventoryHandler.Check)

	// Session
	api.Post("/auth/register", d.AuthHandler.Register)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:          opts.LoginLimit,
		Expiration:   10 * time.Minute,
		LimitReached: d.AuthHandler.LoginLimited,
	}), d.AuthHandler.Login)
	api.Post("/auth/logout", d.AuthHandler.Logout)
	api.Get("/me", d.AuthHandler.Me)
	api.Get("/preferences", d.AccountHandler.Preferences)
	api.Put("/preferences", d.AccountHandler.SetPreferences)

	// Cart and favorites live on the session, signed in or not
	api.Get("/cart", d.CartHandler.View)
	api.Post("/cart", d.CartHandler.Add)
	api.Delete("/cart/:productId", d.CartHandler.Remove)
	api.Get("/favorites", d.WishlistHandler.List)
	api.Post("/favorites/:productId", d.WishlistHandler.Toggle)

	// Buyer
	me := api.Group("/me", RequireUser())
	me.Put("/password", d.AccountHandler.ChangePassword)
	me.Put("/avatar", d.AccountHandler.SetAvatar)
	me.Post("/wallet/recharge", d.AccountHandler.Recharge)

	orders := api.Group("/orders", RequireUser())
	orders.Post("/", d.OrderHandler.Place)
	orders.Get("/", d.OrderHandler.History)
	orders.Get("/:id", d.OrderHandler.Detail)
	orders.Post("/:id/rating", d.OrderHandler.Rate)
	api.Get("/notifications", RequireUser(), d.NotificationHandler.Buyer)
	app.Get("/orders/:id/invoice", RequireUser(), d.OrderHandler.Invoice)

	// Admin
	admin := api.Group("/admin", RequireAdmin())
	admin.Get("/stats", d.AdminHandler.StatsJSON)
	admin.Get("/orders", d.AdminHandler.OrdersJSON)
	admin.Post("/orders/:id/:event", d.AdminHandler.Transition)
	admin.Put("/products", d.AdminHandler.UpsertProduct)
	admin.Delete("/products/:id", d.AdminHandler.DeleteProduct)
	admin.Post("/products/describe", d.AdminHandler.Describe)
	admin.Post("/products/image", d.AdminHandler.UploadImage)
	admin.Get("/inventory", d.InventoryHandler.List)
	admin.Put("/inventory/:id", d.InventoryHandler.SetStock)
	admin.Get("/notifications", d.NotificationHandler.Admin)
	app.Get("/admin", RequireAdmin(), d.AdminHandler.Dashboard)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
	return app
}

// mediaHandler serves files under dir and refuses anything that could
// escape it.
func mediaHandler(dir string) fiber.Handler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return fiber.ErrNotFound
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return fiber.ErrNotFound
		}
		return c.SendFile(filepath.Join(dir, clean), true)
	}
}
