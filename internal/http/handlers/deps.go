package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/persist"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/tenant"
)

type Deps struct {
	Resolver tenant.Resolver
	Provider *tenant.Provider
	Sessions *services.SessionService
	State    *repos.StateRepo

	StorefrontHandler *StorefrontHandler
	CategoryHandler   *CategoryHandler
	CartHandler       *CartHandler
	WishlistHandler   *WishlistHandler
}

// NewResolver builds the tenant resolver from the tenancy config.
func NewResolver(t config.Tenancy) tenant.Resolver {
	aliases := make([]tenant.Alias, 0, len(t.Aliases))
	for _, a := range t.Aliases {
		aliases = append(aliases, tenant.Alias{Contains: a.Contains, Tenant: a.Tenant})
	}
	return tenant.Resolver{Default: t.DefaultTenant, DevAliases: t.DevAliases, Aliases: aliases}
}

// NewDeps wires repos, services and handlers. carts backs the session stores
// and companies the upstream company cache; they must be distinct so cache
// churn cannot evict carts. m may be nil.
func NewDeps(db *sqlx.DB, cfg config.Config, carts, companies persist.Backend, m *metrics.Metrics) *Deps {
	companyRepo := repos.NewCompanyRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	stateRepo := repos.NewStateRepo(db)

	catalogSvc := services.NewCatalogService(companyRepo, catRepo, prodRepo, cfg.Catalog.EagerCategories)
	source := services.NewGuardedSource(catalogSvc, companies, cfg.Upstream.CompanyCacheTTL,
		cfg.Upstream.RequestsPerSecond, cfg.Upstream.Burst)

	sessions := services.NewSessionService(stateRepo, carts, services.SessionOptions{
		CatalogTTL:         cfg.Catalog.ExpirationWindow,
		WishlistExpiration: cfg.Wishlist.Expiration,
		SessionIdleTTL:     cfg.Storage.SessionIdleTTL,
		DeviceTTL:          cfg.Storage.DeviceTTL,
		PartitionByTenant:  cfg.Storage.PartitionByTenant,
		MediaBase:          "/media",
	}, m)
	provider := tenant.NewProvider(cfg.Themes.Defaults, cfg.Themes.Tenants)
	front := services.NewStorefrontService(source, sessions, provider, m)
	cookies := Cookies{DeviceTTL: cfg.Storage.DeviceTTL}

	return &Deps{
		Resolver: NewResolver(cfg.Tenancy),
		Provider: provider,
		Sessions: sessions,
		State:    stateRepo,

		StorefrontHandler: &StorefrontHandler{Front: front, Provider: provider, Cookies: cookies},
		CategoryHandler:   &CategoryHandler{Front: front, Cookies: cookies},
		CartHandler:       &CartHandler{Cart: services.NewCartService(sessions), Sessions: sessions, Cookies: cookies},
		WishlistHandler:   &WishlistHandler{Wish: services.NewWishlistService(sessions), Sessions: sessions, Cookies: cookies},
	}
}

// Register mounts the storefront routes on app.
func (d *Deps) Register(app *fiber.App) {
	app.Get("/", d.StorefrontHandler.Home)

	api := app.Group("/api/v1")
	api.Get("/tenant", d.StorefrontHandler.Tenant)
	api.Get("/state", d.CategoryHandler.State)
	api.Get("/categories/:id", d.CategoryHandler.Category)

	api.Get("/cart", d.CartHandler.View)
	api.Post("/cart", d.CartHandler.Add)
	api.Post("/cart/panel", d.CartHandler.Panel)
	api.Patch("/cart/:productId", d.CartHandler.Update)
	api.Delete("/cart/:productId", d.CartHandler.Remove)

	api.Get("/wishlist", d.WishlistHandler.List)
	api.Post("/wishlist", d.WishlistHandler.Toggle)
	api.Post("/wishlist/panel", d.WishlistHandler.Panel)
	api.Delete("/wishlist/:productId", d.WishlistHandler.Remove)
}
