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

// WishlistNamespace is the persisted key namespace of the wishlist state.
const WishlistNamespace = "wishlist-storage"

// DefaultWishlistExpiration is the whole-list TTL measured from the last mutation.
const DefaultWishlistExpiration = 7 * 24 * time.Hour

// WishlistState carries one list-level timestamp, not one per entry.
type WishlistState struct {
	Wishlist  []domain.Product `json:"wishlist"`
	Timestamp time.Time        `json:"timestamp"`
	IsOpen    bool             `json:"isOpen"`
}

// WishlistStore holds a device's saved products.
type WishlistStore struct {
	mu         sync.Mutex
	state      WishlistState
	persisted  *persist.Store[WishlistState]
	expiration time.Duration
	now        func() time.Time
	notify     Notifier
	onExpire   func()
}

type WishlistOption func(*WishlistStore)

func WithWishlistClock(now func() time.Time) WishlistOption {
	return func(s *WishlistStore) { s.now = now }
}

func WithExpiration(d time.Duration) WishlistOption {
	return func(s *WishlistStore) { s.expiration = d }
}

func WithWishlistNotifier(n Notifier) WishlistOption {
	return func(s *WishlistStore) { s.notify = n }
}

// OnExpire registers a hook run when CheckExpiration clears the list.
func OnExpire(fn func()) WishlistOption {
	return func(s *WishlistStore) { s.onExpire = fn }
}

// NewWishlistStore hydrates from p (then checks expiration) unless p skips hydration.
func NewWishlistStore(ctx context.Context, p *persist.Store[WishlistState], opts ...WishlistOption) *WishlistStore {
	s := &WishlistStore{
		persisted:  p,
		expiration: DefaultWishlistExpiration,
		now:        time.Now,
		notify:     discard{},
	}
	for _, o := range opts {
		o(s)
	}
	s.state = WishlistState{Timestamp: s.now()}
	if !p.SkipHydration() {
		s.Rehydrate(ctx)
	}
	return s
}

// Rehydrate loads the persisted list and runs CheckExpiration on it.
func (s *WishlistStore) Rehydrate(ctx context.Context) {
	s.mu.Lock()
	st, ok, err := s.persisted.Load(ctx)
	if err != nil {
		applog.WarnCtx(ctx, "wishlist.rehydrate.fail", err, map[string]any{"key": s.persisted.Key()})
	}
	if err != nil || !ok {
		st = WishlistState{Timestamp: s.now()}
	}
	s.state = st
	s.mu.Unlock()

	s.CheckExpiration(ctx)
}

func (s *WishlistStore) save(ctx context.Context) {
	if err := s.persisted.Save(ctx, s.state); err != nil {
		applog.ErrorCtx(ctx, "wishlist.persist.fail", err, map[string]any{"key": s.persisted.Key()})
	}
}

// CheckExpiration clears the whole list when its timestamp is older than the
// expiration. It reports whether the list was cleared.
func (s *WishlistStore) CheckExpiration(ctx context.Context) bool {
	s.mu.Lock()
	now := s.now()
	if now.Sub(s.state.Timestamp) <= s.expiration {
		s.mu.Unlock()
		return false
	}
	dropped := len(s.state.Wishlist)
	s.state.Wishlist = nil
	s.state.Timestamp = now
	s.save(ctx)
	s.mu.Unlock()

	applog.InfoCtx(ctx, "wishlist.expired", map[string]any{"key": s.persisted.Key(), "dropped": dropped})
	if s.onExpire != nil {
		s.onExpire()
	}
	return true
}

func (s *WishlistStore) contains(id string) bool {
	return slices.ContainsFunc(s.state.Wishlist, func(p domain.Product) bool { return p.ID == id })
}

// Add appends p, resets the list timestamp and opens the panel. No-op when p
// is already saved. It reports whether p was added.
func (s *WishlistStore) Add(ctx context.Context, p domain.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contains(p.ID) {
		return false
	}
	s.state.Wishlist = append(slices.Clone(s.state.Wishlist), p)
	s.state.Timestamp = s.now()
	s.state.IsOpen = true
	s.save(ctx)
	s.notify.Notify(Notice{Kind: "wishlist.added", Message: p.Name + " saved to wishlist", ProductID: p.ID})
	return true
}

// Remove drops productID. The list timestamp is left untouched.
func (s *WishlistStore) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.contains(productID) {
		return
	}
	s.state.Wishlist = slices.DeleteFunc(slices.Clone(s.state.Wishlist), func(p domain.Product) bool { return p.ID == productID })
	s.save(ctx)
}

// Toggle removes p if saved, adds it otherwise. It reports membership afterwards.
func (s *WishlistStore) Toggle(ctx context.Context, p domain.Product) bool {
	if s.Contains(p.ID) {
		s.Remove(ctx, p.ID)
		return false
	}
	s.Add(ctx, p)
	return true
}

// SyncWithServer replaces stored snapshots with matching fresh products.
// Membership is unchanged.
func (s *WishlistStore) SyncWithServer(ctx context.Context, fresh []domain.Product) int {
	byID := make(map[string]domain.Product, len(fresh))
	for _, p := range fresh {
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = p
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := slices.Clone(s.state.Wishlist)
	updated := 0
	for i, p := range list {
		if f, ok := byID[p.ID]; ok {
			list[i] = f
			updated++
		}
	}
	if updated > 0 {
		s.state.Wishlist = list
		s.save(ctx)
	}
	return updated
}

func (s *WishlistStore) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contains(productID)
}

func (s *WishlistStore) Items() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Wishlist)
}

func (s *WishlistStore) Timestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Timestamp
}

func (s *WishlistStore) SetOpen(ctx context.Context, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsOpen = open
	s.save(ctx)
}

func (s *WishlistStore) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsOpen
}
