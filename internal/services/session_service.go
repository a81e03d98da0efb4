package services

import (
	"context"
	"sync"
	"time"

	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/persist"
	"storefront/internal/store"
)

// Scope identifies whose stores a request touches.
type Scope struct {
	Tenant  string
	Device  string // long-lived "did" cookie
	Session string // browser-session "sid" cookie
}

// tag marks ctx with the scope's tenant for logging, unless a caller
// upstream already did.
func (sc Scope) tag(ctx context.Context) context.Context {
	if applog.TenantFrom(ctx) != "" || sc.Tenant == "" {
		return ctx
	}
	return applog.WithTenant(ctx, sc.Tenant)
}

// Visitor is the live set of stores for one device and browser session.
type Visitor struct {
	Catalog  *store.CatalogStore
	Wishlist *store.WishlistStore
	Cart     *store.CartStore
	Notices  *store.NoticeQueue
}

type SessionOptions struct {
	CatalogTTL         time.Duration
	WishlistExpiration time.Duration
	SessionIdleTTL     time.Duration
	DeviceTTL          time.Duration
	PartitionByTenant  bool
	MediaBase          string
	// Now overrides time.Now.
	Now func() time.Time
}

type deviceEntry struct {
	catalog  *store.CatalogStore
	wishlist *store.WishlistStore
	notices  *store.NoticeQueue
	lastSeen time.Time
}

type sessionEntry struct {
	cart     *store.CartStore
	lastSeen time.Time
}

// Purger drops expired durable state.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// SessionService is the registry of live stores. Device stores (catalog
// cache, wishlist) persist to the durable backend; session stores (cart)
// persist to the session backend. Idle entries are evicted from memory and
// rebuilt from their backend on the next request.
type SessionService struct {
	mu       sync.Mutex
	durable  persist.Backend
	session  persist.Backend
	opts     SessionOptions
	metrics  *metrics.Metrics
	now      func() time.Time
	devices  map[string]*deviceEntry
	sessions map[string]*sessionEntry
}

func NewSessionService(durable, session persist.Backend, opts SessionOptions, m *metrics.Metrics) *SessionService {
	if opts.SessionIdleTTL <= 0 {
		opts.SessionIdleTTL = 30 * time.Minute
	}
	if opts.WishlistExpiration <= 0 {
		opts.WishlistExpiration = store.DefaultWishlistExpiration
	}
	if opts.MediaBase == "" {
		opts.MediaBase = "/media"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SessionService{
		durable:  durable,
		session:  session,
		opts:     opts,
		metrics:  m,
		now:      opts.Now,
		devices:  map[string]*deviceEntry{},
		sessions: map[string]*sessionEntry{},
	}
}

// scopeKey is the storage scope of an id. Keys are shared across tenants
// unless PartitionByTenant is set.
func (s *SessionService) scopeKey(tenant, id string) []string {
	if s.opts.PartitionByTenant && tenant != "" {
		return []string{id, tenant}
	}
	return []string{id}
}

// Visitor returns the live stores for sc, creating and hydrating them on
// first use.
func (s *SessionService) Visitor(ctx context.Context, sc Scope) *Visitor {
	ctx = sc.tag(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	devScope := s.scopeKey(sc.Tenant, sc.Device)
	devKey := persist.Key("device", devScope...)
	dev, ok := s.devices[devKey]
	if !ok {
		dev = s.newDevice(ctx, devScope)
		s.devices[devKey] = dev
	}
	dev.lastSeen = now

	sesScope := s.scopeKey(sc.Tenant, sc.Session)
	sesKey := persist.Key("session", sesScope...)
	ses, ok := s.sessions[sesKey]
	if !ok {
		ses = &sessionEntry{cart: s.newCart(ctx, sesScope, dev.notices)}
		s.sessions[sesKey] = ses
	}
	ses.lastSeen = now

	return &Visitor{Catalog: dev.catalog, Wishlist: dev.wishlist, Cart: ses.cart, Notices: dev.notices}
}

func (s *SessionService) newDevice(ctx context.Context, scope []string) *deviceEntry {
	notices := &store.NoticeQueue{}
	catalog := store.NewCatalogStore(ctx,
		persist.New[store.Snapshot](s.durable, persist.Key(store.CatalogNamespace, scope...),
			persist.WithTTL(s.opts.DeviceTTL), persist.SkipHydration()),
		s.opts.CatalogTTL,
		store.WithMediaBase(s.opts.MediaBase),
		store.WithClock(s.now),
	)
	wishlist := store.NewWishlistStore(ctx,
		persist.New[store.WishlistState](s.durable, persist.Key(store.WishlistNamespace, scope...),
			persist.WithTTL(s.opts.DeviceTTL)),
		store.WithExpiration(s.opts.WishlistExpiration),
		store.WithWishlistClock(s.now),
		store.WithWishlistNotifier(notices),
		store.OnExpire(func() { s.metrics.WishlistCleared(context.Background()) }),
	)
	return &deviceEntry{catalog: catalog, wishlist: wishlist, notices: notices}
}

func (s *SessionService) newCart(ctx context.Context, scope []string, n store.Notifier) *store.CartStore {
	p := persist.New[store.CartState](s.session, persist.Key(store.CartNamespace, scope...),
		persist.WithTTL(s.opts.SessionIdleTTL))
	return store.NewCartStore(ctx, p, n)
}

// Notices drains the visitor's pending notices; never nil.
func (s *SessionService) Notices(ctx context.Context, sc Scope) []store.Notice {
	n := s.Visitor(ctx, sc).Notices.Drain()
	if n == nil {
		return []store.Notice{}
	}
	return n
}

// Sweep evicts entries idle for longer than the session idle TTL and returns
// how many were dropped.
func (s *SessionService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.opts.SessionIdleTTL)
	n := 0
	for k, d := range s.devices {
		if d.lastSeen.Before(cutoff) {
			delete(s.devices, k)
			n++
		}
	}
	for k, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, k)
			n++
		}
	}
	return n
}

// Live reports how many device and session entries are in memory.
func (s *SessionService) Live() (devices, sessions int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.devices), len(s.sessions)
}

// Run sweeps idle entries every interval until ctx is done. When purger is
// non-nil expired durable state is purged on the same tick.
func (s *SessionService) Run(ctx context.Context, interval time.Duration, purger Purger) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			evicted := s.Sweep()
			fields := map[string]any{"evicted": evicted}
			if purger != nil {
				n, err := purger.PurgeExpired(ctx)
				if err != nil {
					applog.ErrorCtx(ctx, "session.purge.fail", err, nil)
				}
				fields["purged"] = n
			}
			if evicted > 0 {
				applog.InfoCtx(ctx, "session.sweep", fields)
			}
		}
	}
}
