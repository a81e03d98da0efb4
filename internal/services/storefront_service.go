package services

import (
	"context"
	"errors"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/store"
	"storefront/internal/tenant"
)

var ErrUnknownTenant = errors.New("unknown tenant")

// PageView is everything the storefront page renders after initialization.
type PageView struct {
	Tenant       string
	Config       domain.TenantConfig
	Company      *domain.CompanyDetails
	Categories   []domain.Category
	Products     []domain.Product
	Cart         []store.CartItem
	CartTotal    float64
	CartCount    int
	CartOpen     bool
	Wishlist     []domain.Product
	WishlistOpen bool
	NotFound     bool
}

// Price formats amount in the tenant's currency.
func (v PageView) Price(amount float64) string { return v.Config.FormatPrice(amount) }

type StorefrontService struct {
	Source   CatalogSource
	Sessions *SessionService
	Provider *tenant.Provider
	Metrics  *metrics.Metrics
}

func NewStorefrontService(src CatalogSource, sessions *SessionService, p *tenant.Provider, m *metrics.Metrics) *StorefrontService {
	return &StorefrontService{Source: src, Sessions: sessions, Provider: p, Metrics: m}
}

// Company resolves the company behind a tenant, ErrUnknownTenant when none.
func (s *StorefrontService) Company(ctx context.Context, tenantID string) (*domain.CompanyDetails, error) {
	c, err := s.Source.FetchCompanyDetails(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrUnknownTenant
	}
	return c, nil
}

// Load runs one page load: resolve the company, reconcile the server catalog
// into the visitor's stores and read the result. An unknown tenant yields a
// view with NotFound set. Any other company or catalog failure degrades: the
// page renders from the provider config and whatever the visitor has cached.
func (s *StorefrontService) Load(ctx context.Context, sc Scope) (PageView, error) {
	ctx = sc.tag(ctx)
	view := PageView{Tenant: sc.Tenant, Config: s.Provider.Config(sc.Tenant)}

	company, err := s.Company(ctx, sc.Tenant)
	if errors.Is(err, ErrUnknownTenant) {
		view.NotFound = true
		return view, nil
	}
	fetch := func(ctx context.Context) ([]domain.Category, error) {
		return s.Source.FetchCategories(ctx, company.ID)
	}
	if err != nil {
		if ctx.Err() != nil {
			return view, ctx.Err()
		}
		applog.WarnCtx(ctx, "storefront.company.fail", err, nil)
		companyErr := err
		fetch = func(context.Context) ([]domain.Category, error) { return nil, companyErr }
		company = nil
	} else {
		view.Company = company
		view.Config = tenant.WithCompany(view.Config, company)
	}

	v := s.Sessions.Visitor(ctx, sc)
	in := store.NewInitializer(v.Catalog, v.Cart, v.Wishlist, s.Metrics)
	if err := in.Run(ctx, company, fetch); err != nil {
		return view, err
	}
	if err := in.Wait(ctx); err != nil {
		return view, err
	}

	view.Categories = v.Catalog.Categories()
	view.Products = v.Catalog.Products()
	view.Cart = v.Cart.Items()
	view.CartTotal = v.Cart.Total()
	view.CartCount = v.Cart.Count()
	view.CartOpen = v.Cart.IsOpen()
	view.Wishlist = v.Wishlist.Items()
	view.WishlistOpen = v.Wishlist.IsOpen()
	return view, nil
}

// LoadCategory returns a category for display, fetching it from the source
// when the cached copy is a skeleton or stale.
func (s *StorefrontService) LoadCategory(ctx context.Context, sc Scope, categoryID string) (domain.Category, error) {
	ctx = sc.tag(ctx)
	v := s.Sessions.Visitor(ctx, sc)
	if cat, ok := v.Catalog.Category(categoryID); ok && !cat.IsSkeleton() && !v.Catalog.IsExpired(categoryID) {
		return cat, nil
	}

	company, err := s.Company(ctx, sc.Tenant)
	if err != nil {
		return domain.Category{}, err
	}
	cat, err := s.Source.FetchCategory(ctx, company.ID, categoryID)
	if err != nil {
		return domain.Category{}, err
	}
	v.Catalog.SetCategory(ctx, cat)
	applog.InfoCtx(ctx, "catalog.category.loaded", map[string]any{"category": categoryID})

	stored, _ := v.Catalog.Category(categoryID)
	return stored, nil
}

// State returns the visitor's current catalog snapshot.
func (s *StorefrontService) State(ctx context.Context, sc Scope) store.Snapshot {
	return s.Sessions.Visitor(ctx, sc).Catalog.Snapshot()
}
