package store_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/persist"
	"storefront/internal/store"
)

func newWishlist(b persist.Backend, clk *clock, opts ...store.WishlistOption) *store.WishlistStore {
	p := persist.New[store.WishlistState](b, persist.Key(store.WishlistNamespace, "dev-1"))
	opts = append([]store.WishlistOption{store.WithWishlistClock(clk.now)}, opts...)
	return store.NewWishlistStore(context.Background(), p, opts...)
}

func TestWishlist_ExpiresAfterSevenDays(t *testing.T) {
	b := newMem()
	clk := newClock()
	raw, _ := json.Marshal(map[string]any{
		"state": store.WishlistState{
			Wishlist:  []domain.Product{product("p1", 1)},
			Timestamp: clk.now().Add(-8 * day),
		},
		"version": 0,
	})
	b.m[persist.Key(store.WishlistNamespace, "dev-1")] = raw

	expired := 0
	s := newWishlist(b, clk, store.OnExpire(func() { expired++ }))

	if len(s.Items()) != 0 {
		t.Fatalf("stale wishlist should be cleared, got %+v", s.Items())
	}
	if !s.Timestamp().Equal(clk.now()) {
		t.Fatalf("timestamp should reset to now, got %v", s.Timestamp())
	}
	if expired != 1 {
		t.Fatalf("expire hook ran %d times", expired)
	}
}

func TestWishlist_KeepsRecentList(t *testing.T) {
	b := newMem()
	clk := newClock()
	s := newWishlist(b, clk)
	s.Add(context.Background(), product("p1", 1))

	clk.advance(6 * day)
	s2 := newWishlist(b, clk)
	if !s2.Contains("p1") {
		t.Fatal("six-day-old wishlist should survive rehydration")
	}
}

func TestWishlist_SetSemanticsAndTimestamp(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	s := newWishlist(newMem(), clk)

	clk.advance(time.Hour)
	if !s.Add(ctx, product("p1", 1)) {
		t.Fatal("first add should succeed")
	}
	added := s.Timestamp()
	if !added.Equal(clk.now()) || !s.IsOpen() {
		t.Fatalf("add should stamp now and open the panel: ts=%v open=%v", added, s.IsOpen())
	}

	clk.advance(time.Hour)
	if s.Add(ctx, product("p1", 1)) {
		t.Fatal("duplicate add should be a no-op")
	}
	if len(s.Items()) != 1 || !s.Timestamp().Equal(added) {
		t.Fatal("duplicate add changed state")
	}

	clk.advance(time.Hour)
	s.Remove(ctx, "p1")
	if s.Contains("p1") {
		t.Fatal("remove failed")
	}
	if !s.Timestamp().Equal(added) {
		t.Fatal("remove must not touch the timestamp")
	}
}

func TestWishlist_Toggle(t *testing.T) {
	ctx := context.Background()
	s := newWishlist(newMem(), newClock())
	p := product("p1", 1)

	if !s.Toggle(ctx, p) || !s.Contains("p1") {
		t.Fatal("toggle should add")
	}
	if s.Toggle(ctx, p) || s.Contains("p1") {
		t.Fatal("toggle should remove")
	}
}

func TestWishlist_SyncWithServer(t *testing.T) {
	ctx := context.Background()
	s := newWishlist(newMem(), newClock())
	s.Add(ctx, product("p1", 10))
	s.Add(ctx, product("p2", 20))

	fresh := product("p1", 8)
	fresh.Description = "now on sale"
	n := s.SyncWithServer(ctx, []domain.Product{fresh, product("p9", 1)})

	if n != 1 {
		t.Fatalf("want 1 updated, got %d", n)
	}
	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("membership changed: %+v", items)
	}
	if items[0].Price != 8 || items[0].Description != "now on sale" {
		t.Fatalf("p1 not refreshed: %+v", items[0])
	}
	if items[1].Price != 20 {
		t.Fatalf("p2 should be untouched: %+v", items[1])
	}
}
