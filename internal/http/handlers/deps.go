package handlers

import (
	"context"

	"github.com/jmoiron/sqlx"

	"bazaar/internal/config"
	"bazaar/internal/events"
	"bazaar/internal/repos"
	"bazaar/internal/services"
)

// Backends are the pluggable outside services. Nil fields fall back to the
// local media directory, a no-op publisher and no description generator.
type Backends struct {
	Images    services.ImageStore
	Events    events.Publisher
	Generator services.TextGenerator
}

type Deps struct {
	Auth     *services.AuthService
	Accounts *services.AccountService

	AuthHandler         *AuthHandler
	AccountHandler      *AccountHandler
	CategoryHandler     *CategoryHandler
	ProductHandler      *ProductHandler
	SearchHandler       *SearchHandler
	InventoryHandler    *InventoryHandler
	CartHandler         *CartHandler
	WishlistHandler     *WishlistHandler
	OrderHandler        *OrderHandler
	NotificationHandler *NotificationHandler
	AdminHandler        *AdminHandler
}

// NewDeps wires services and handlers over db and loads the catalog cache.
func NewDeps(ctx context.Context, db *sqlx.DB, cfg config.Config, b Backends) (*Deps, error) {
	if b.Images == nil {
		b.Images = services.LocalImageStore{Dir: cfg.MediaDir}
	}
	if b.Events == nil {
		b.Events = events.Nop{}
	}

	state := services.NewSessionState()
	images := services.NewImageService(b.Images)

	catalogSvc := services.NewCatalogService(db, images)
	if err := catalogSvc.Refresh(ctx); err != nil {
		return nil, err
	}
	invSvc := services.NewInventoryService(repos.NewInventoryRepo(db))
	cartSvc := services.NewCartService(state, catalogSvc)
	wishSvc := services.NewWishlistService(state, catalogSvc)
	orderSvc := services.NewOrderService(db, cartSvc, catalogSvc, b.Events)
	authSvc := services.NewAuthService(db, state, cfg.AdminEmail)
	accountSvc := services.NewAccountService(db, images)
	notifSvc := services.NewNotificationService(db)

	return &Deps{
		Auth:     authSvc,
		Accounts: accountSvc,

		AuthHandler:         &AuthHandler{Auth: authSvc, Secure: cfg.CookieSecure},
		AccountHandler:      &AccountHandler{Accounts: accountSvc},
		CategoryHandler:     &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:      &ProductHandler{Catalog: catalogSvc, Inv: invSvc},
		SearchHandler:       &SearchHandler{Catalog: catalogSvc},
		InventoryHandler:    &InventoryHandler{Inv: invSvc, Catalog: catalogSvc},
		CartHandler:         &CartHandler{Cart: cartSvc},
		WishlistHandler:     &WishlistHandler{Wish: wishSvc},
		OrderHandler:        &OrderHandler{Order: orderSvc},
		NotificationHandler: &NotificationHandler{Notes: notifSvc},
		AdminHandler: &AdminHandler{
			Orders:    orderSvc,
			Catalog:   catalogSvc,
			Images:    images,
			Stats:     services.NewStatsService(db),
			Describer: services.NewDescriber(b.Generator),
		},
	}, nil
}
