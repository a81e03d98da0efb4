package store

import (
	"context"
	"sync"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
)

// Phase is the initializer's lifecycle state.
type Phase int

const (
	Uninitialized Phase = iota
	Reconciling
	Ready
)

func (p Phase) String() string {
	switch p {
	case Reconciling:
		return "reconciling"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

// FetchFunc supplies the server's category payload for one page load.
type FetchFunc func(ctx context.Context) ([]domain.Category, error)

// Initializer runs the once-per-page-load pass that merges the server payload
// into the catalog store and propagates the tenant into the cart.
type Initializer struct {
	mu    sync.Mutex
	phase Phase
	ready chan struct{}

	catalog  *CatalogStore
	cart     *CartStore
	wishlist *WishlistStore
	metrics  *metrics.Metrics

	decisions []Decision
}

// NewInitializer wires the stores of one visitor. wishlist and m may be nil.
func NewInitializer(catalog *CatalogStore, cart *CartStore, wishlist *WishlistStore, m *metrics.Metrics) *Initializer {
	return &Initializer{
		ready:    make(chan struct{}),
		catalog:  catalog,
		cart:     cart,
		wishlist: wishlist,
		metrics:  m,
	}
}

func (in *Initializer) Phase() Phase {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.phase
}

// Ready is closed once reconciliation has finished.
func (in *Initializer) Ready() <-chan struct{} { return in.ready }

// Wait blocks until Ready or ctx is done.
func (in *Initializer) Wait(ctx context.Context) error {
	select {
	case <-in.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Decisions returns the per-category outcomes of the completed run.
func (in *Initializer) Decisions() []Decision {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.decisions
}

// Run fetches server categories and reconciles them into the catalog store,
// then expires and refreshes the wishlist. Calls made while a run is in
// flight or after Ready are no-ops.
//
// A fetch error degrades to an empty payload, so the cached catalog is kept.
// If ctx ends before the fetch returns, nothing is written, the phase goes
// back to Uninitialized and ctx.Err() is returned.
func (in *Initializer) Run(ctx context.Context, company *domain.CompanyDetails, fetch FetchFunc) error {
	in.mu.Lock()
	if in.phase != Uninitialized {
		in.mu.Unlock()
		return nil
	}
	in.phase = Reconciling
	in.mu.Unlock()

	tenant := applog.TenantFrom(ctx)
	if company != nil {
		tenant = company.Domain
		ctx = applog.WithTenant(ctx, tenant)
	}

	server, err := fetch(ctx)
	if ctx.Err() != nil {
		applog.WarnCtx(ctx, "catalog.init.discarded", ctx.Err(), nil)
		in.setPhase(Uninitialized)
		return ctx.Err()
	}
	if err != nil {
		applog.WarnCtx(ctx, "catalog.fetch.fail", err, nil)
		in.metrics.FetchFailed(ctx, tenant)
		server = nil
	}

	decisions := in.catalog.ReconcileWith(ctx, server)
	counts := map[string]any{"categories": len(decisions)}
	for _, d := range decisions {
		in.metrics.Reconciled(ctx, string(d.Outcome))
		if n, ok := counts[string(d.Outcome)].(int); ok {
			counts[string(d.Outcome)] = n + 1
		} else {
			counts[string(d.Outcome)] = 1
		}
	}
	applog.InfoCtx(ctx, "catalog.reconcile", counts)

	// a failed company lookup keeps the cart's last known company
	if in.cart != nil && company != nil {
		in.cart.SetCompany(ctx, company)
	}
	if in.wishlist != nil {
		in.wishlist.CheckExpiration(ctx)
		in.wishlist.SyncWithServer(ctx, in.catalog.Products())
	}

	in.mu.Lock()
	in.decisions = decisions
	in.phase = Ready
	in.mu.Unlock()
	close(in.ready)
	return nil
}

func (in *Initializer) setPhase(p Phase) {
	in.mu.Lock()
	in.phase = p
	in.mu.Unlock()
}
