// Package store holds the per-device and per-session state of a storefront
// visitor: the reconciled catalog, the cart and the wishlist.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/persist"
)

// CatalogNamespace is the persisted key namespace of the catalog state.
const CatalogNamespace = "catalog-storage"

// CatalogStore owns the canonical copy of categories and products for one
// device. Its persisted store is normally built with persist.SkipHydration so
// the Initializer controls when the cache is read (ReconcileWith).
type CatalogStore struct {
	mu        sync.Mutex
	state     Snapshot
	persisted *persist.Store[Snapshot]
	ttl       time.Duration
	mediaBase string
	now       func() time.Time
}

type CatalogOption func(*CatalogStore)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) CatalogOption {
	return func(s *CatalogStore) { s.now = now }
}

// WithMediaBase sets the prefix for relative product image paths.
func WithMediaBase(base string) CatalogOption {
	return func(s *CatalogStore) { s.mediaBase = base }
}

func NewCatalogStore(ctx context.Context, p *persist.Store[Snapshot], ttl time.Duration, opts ...CatalogOption) *CatalogStore {
	s := &CatalogStore{
		persisted: p,
		ttl:       ttl,
		mediaBase: "/media",
		now:       time.Now,
		state:     emptySnapshot(),
	}
	for _, o := range opts {
		o(s)
	}
	if !p.SkipHydration() {
		s.state = s.load(ctx)
	}
	return s
}

func emptySnapshot() Snapshot {
	return Snapshot{CategoryTimestamps: map[string]time.Time{}}
}

// load reads the persisted candidate; any failure is an empty cache.
func (s *CatalogStore) load(ctx context.Context) Snapshot {
	snap, ok, err := s.persisted.Load(ctx)
	if err != nil {
		applog.WarnCtx(ctx, "catalog.rehydrate.fail", err, map[string]any{"key": s.persisted.Key()})
		return emptySnapshot()
	}
	if !ok {
		return emptySnapshot()
	}
	if snap.CategoryTimestamps == nil {
		snap.CategoryTimestamps = map[string]time.Time{}
	}
	return snap
}

func (s *CatalogStore) save(ctx context.Context) {
	if err := s.persisted.Save(ctx, s.state); err != nil {
		applog.ErrorCtx(ctx, "catalog.persist.fail", err, map[string]any{"key": s.persisted.Key()})
	}
}

// Rehydrate replaces in-memory state with the persisted snapshot.
func (s *CatalogStore) Rehydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.load(ctx)
}

// ReconcileWith rehydrates, merges server into the cached state, stores and
// persists the result. The whole pass holds the store lock.
func (s *CatalogStore) ReconcileWith(ctx context.Context, server []domain.Category) []Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	cached := s.load(ctx)
	merged, decisions := Reconcile(cached, server, s.now(), s.ttl, s.mediaBase)
	s.state = merged
	s.save(ctx)
	return decisions
}

// SetCategory stores a lazily fetched category. A populated category is
// server-confirmed and stamped now.
func (s *CatalogStore) SetCategory(ctx context.Context, cat domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.state.Categories, func(c domain.Category) bool { return c.ID == cat.ID })
	cats := slices.Clone(s.state.Categories)
	if i >= 0 {
		cats[i] = cat
	} else {
		cats = append(cats, cat)
	}
	stamps := make(map[string]time.Time, len(s.state.CategoryTimestamps)+1)
	for id, ts := range s.state.CategoryTimestamps {
		stamps[id] = ts
	}
	if cat.IsSkeleton() {
		delete(stamps, cat.ID)
	} else {
		stamps[cat.ID] = s.now()
	}
	s.state = Snapshot{
		Products:           Flatten(cats, s.mediaBase),
		Categories:         cats,
		CategoryTimestamps: stamps,
	}
	s.save(ctx)
}

// IsExpired reports whether category id is stale or was never confirmed.
func (s *CatalogStore) IsExpired(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.state.CategoryTimestamps[id]
	return Expired(ts, ok, s.now(), s.ttl)
}

// Category returns the stored category with id.
func (s *CatalogStore) Category(id string) (domain.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.state.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Category{}, false
}

func (s *CatalogStore) Categories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Categories)
}

func (s *CatalogStore) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Products)
}

// Product looks a product up in the derived list.
func (s *CatalogStore) Product(id string) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.state.Products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Snapshot returns a copy of the full state.
func (s *CatalogStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamps := make(map[string]time.Time, len(s.state.CategoryTimestamps))
	for id, ts := range s.state.CategoryTimestamps {
		stamps[id] = ts
	}
	return Snapshot{
		Products:           slices.Clone(s.state.Products),
		Categories:         slices.Clone(s.state.Categories),
		CategoryTimestamps: stamps,
	}
}

// Reset clears memory and persisted state.
func (s *CatalogStore) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = emptySnapshot()
	if err := s.persisted.Clear(ctx); err != nil {
		applog.ErrorCtx(ctx, "catalog.reset.fail", err, nil)
	}
}
