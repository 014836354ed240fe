package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/domain"
	"bazaar/internal/i18n"
	applog "bazaar/internal/log"
	"bazaar/internal/repos"
	"bazaar/internal/services"
)

// render fills the values every page template expects.
func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := currentUser(c); u != nil {
		data["User"] = u
	}
	loc := locale(c)
	data["Lang"] = string(loc)
	if loc.RTL() {
		data["Dir"] = "rtl"
	} else {
		data["Dir"] = "ltr"
	}
	tok, _ := c.Locals("csrf").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	return c.Render(tmpl, data)
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

func failure(c *fiber.Ctx, status int, code string, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": msg,
		},
	})
}

type problem struct {
	status int
	code   string
	key    i18n.Key
}

var problems = []struct {
	err error
	problem
}{
	{services.ErrNotAuthenticated, problem{fiber.StatusUnauthorized, "NOT_AUTHENTICATED", i18n.NotAuthenticated}},
	{services.ErrBadCreds, problem{fiber.StatusUnauthorized, "BAD_CREDENTIALS", i18n.BadCredentials}},
	{services.ErrForbidden, problem{fiber.StatusForbidden, "FORBIDDEN", i18n.Forbidden}},
	{services.ErrWrongPassword, problem{fiber.StatusBadRequest, "WRONG_PASSWORD", i18n.WrongPassword}},
	{services.ErrMissingFields, problem{fiber.StatusBadRequest, "MISSING_FIELDS", i18n.MissingFields}},
	{services.ErrInvalidInput, problem{fiber.StatusBadRequest, "INVALID_INPUT", i18n.InvalidInput}},
	{services.ErrInvalidImage, problem{fiber.StatusBadRequest, "INVALID_IMAGE", i18n.InvalidImage}},
	{services.ErrInvalidAmount, problem{fiber.StatusBadRequest, "INVALID_AMOUNT", i18n.InvalidAmount}},
	{services.ErrInvalidPayment, problem{fiber.StatusBadRequest, "INVALID_PAYMENT", i18n.InvalidPayment}},
	{services.ErrEmptyCart, problem{fiber.StatusBadRequest, "EMPTY_CART", i18n.EmptyCart}},
	{services.ErrReservedEmail, problem{fiber.StatusBadRequest, "RESERVED_EMAIL", i18n.ReservedEmail}},
	{services.ErrEmailTaken, problem{fiber.StatusConflict, "EMAIL_TAKEN", i18n.EmailTaken}},
	{services.ErrInsufficientFunds, problem{fiber.StatusPaymentRequired, "INSUFFICIENT_FUNDS", i18n.InsufficientFunds}},
	{domain.ErrInvalidTransition, problem{fiber.StatusConflict, "INVALID_TRANSITION", i18n.InvalidTransition}},
	{services.ErrAlreadyRated, problem{fiber.StatusConflict, "ALREADY_RATED", i18n.AlreadyRated}},
	{services.ErrNotRateable, problem{fiber.StatusConflict, "NOT_RATEABLE", i18n.NotRateable}},
}

var storeProblems = map[repos.Kind]problem{
	repos.KindNotFound:     {fiber.StatusNotFound, "NOT_FOUND", i18n.NotFound},
	repos.KindConflict:     {fiber.StatusConflict, "STORE_CONFLICT", i18n.StoreConflict},
	repos.KindUnavailable:  {fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE", i18n.StoreUnavailable},
	repos.KindMissingTable: {fiber.StatusServiceUnavailable, "STORE_MISSING_TABLE", i18n.StoreMissingTable},
}

// fail maps err to a status and localized message. Internal details only
// reach the log.
func fail(c *fiber.Ctx, action string, err error) error {
	loc := locale(c)

	var stock *services.InsufficientStockError
	if errors.As(err, &stock) {
		applog.Info(c, action+".rejected", map[string]any{"product": stock.ProductID, "wanted": stock.Wanted, "available": stock.Available})
		return failure(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", i18n.T(loc, i18n.InsufficientStock, stock.Product))
	}
	for _, p := range problems {
		if errors.Is(err, p.err) {
			if p.status == fiber.StatusUnauthorized || p.status == fiber.StatusForbidden {
				applog.Security(c, action+".denied", map[string]any{"reason": p.code})
			}
			return failure(c, p.status, p.code, i18n.T(loc, p.key))
		}
	}
	if errors.Is(err, repos.ErrNotFound) {
		p := storeProblems[repos.KindNotFound]
		return failure(c, p.status, p.code, i18n.T(loc, p.key))
	}
	if p, ok := storeProblems[repos.KindOf(err)]; ok {
		applog.Error(c, action+".store", err, map[string]any{"kind": repos.KindOf(err).String()})
		return failure(c, p.status, p.code, i18n.T(loc, p.key))
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code == fiber.StatusNotFound {
			return failure(c, fe.Code, "NOT_FOUND", i18n.T(loc, i18n.NotFound))
		}
		if fe.Code < fiber.StatusInternalServerError {
			return failure(c, fe.Code, "BAD_REQUEST", i18n.T(loc, i18n.InvalidInput))
		}
	}
	applog.Error(c, action+".fail", err, nil)
	return failure(c, fiber.StatusInternalServerError, "SERVER_ERROR", i18n.T(loc, i18n.ServerError))
}

// invalid reports a malformed request body or parameter.
func invalid(c *fiber.Ctx, field string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return failure(c, fiber.StatusBadRequest, "INVALID_INPUT", i18n.T(locale(c), i18n.InvalidInput))
}

// ErrorHandler is the app-level fallback. API routes get the JSON envelope,
// pages get the friendly error template.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if isAPI(c) {
		return fail(c, "server.error", err)
	}
	status := fiber.StatusInternalServerError
	key := i18n.ServerError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		status = fe.Code
		key = i18n.InvalidInput
		if fe.Code == fiber.StatusNotFound {
			key = i18n.NotFound
		}
	} else if errors.Is(err, repos.ErrNotFound) {
		status = fiber.StatusNotFound
		key = i18n.NotFound
	} else {
		applog.Error(c, "server.error", err, nil)
	}
	c.Status(status)
	if rerr := render(c, "notfound", fiber.Map{"Message": i18n.T(locale(c), key)}); rerr != nil {
		return c.Status(status).SendString(i18n.T(locale(c), key))
	}
	return nil
}

func isAPI(c *fiber.Ctx) bool {
	p := c.Path()
	return len(p) >= 4 && p[:4] == "/api"
}
