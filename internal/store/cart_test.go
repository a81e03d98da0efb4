package store_test

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/persist"
	"storefront/internal/store"
)

func newCart(b persist.Backend, n store.Notifier) *store.CartStore {
	p := persist.New[store.CartState](b, persist.Key(store.CartNamespace, "sid-1"))
	return store.NewCartStore(context.Background(), p, n)
}

func TestCartStore_VariantLines(t *testing.T) {
	ctx := context.Background()
	s := newCart(newMem(), nil)
	shirt := product("shirt", 20)

	s.AddToCart(ctx, shirt, map[string]string{"size": "M"})
	s.AddToCart(ctx, shirt, map[string]string{"size": "M"})
	s.AddToCart(ctx, shirt, map[string]string{"size": "L"})

	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("want 2 lines, got %d", len(items))
	}
	if items[0].SelectedVariants["size"] != "M" || items[0].Quantity != 2 {
		t.Fatalf("M line: %+v", items[0])
	}
	if items[1].SelectedVariants["size"] != "L" || items[1].Quantity != 1 {
		t.Fatalf("L line: %+v", items[1])
	}
	if s.Total() != 60 || s.Count() != 3 {
		t.Fatalf("total=%v count=%d", s.Total(), s.Count())
	}
}

func TestCartStore_LineKeyIgnoresMapOrder(t *testing.T) {
	a := map[string]string{"size": "M", "color": "red"}
	b := map[string]string{"color": "red", "size": "M"}
	if store.LineKey("p", a) != store.LineKey("p", b) {
		t.Fatal("same selection should give the same line key")
	}
	if store.LineKey("p", a) == store.LineKey("q", a) {
		t.Fatal("different products should not share a line key")
	}
	if got := store.SerializeVariants(a); got != "color=red;size=M" {
		t.Fatalf("serialize: %q", got)
	}
}

func TestCartStore_RemoveAndQuantity(t *testing.T) {
	ctx := context.Background()
	s := newCart(newMem(), nil)
	shirt := product("shirt", 20)
	mug := product("mug", 5)

	s.AddToCart(ctx, shirt, map[string]string{"size": "M"})
	s.AddToCart(ctx, shirt, map[string]string{"size": "L"})
	s.AddToCart(ctx, mug, nil)

	s.UpdateQuantity(ctx, "mug", 0)
	if s.Items()[2].Quantity != 1 {
		t.Fatal("quantity below 1 should be ignored")
	}
	s.UpdateQuantity(ctx, "mug", 4)
	if s.Total() != 60 {
		t.Fatalf("total after update: %v", s.Total())
	}

	s.RemoveFromCart(ctx, "shirt")
	items := s.Items()
	if len(items) != 1 || items[0].ID != "mug" {
		t.Fatalf("remove should drop every shirt line: %+v", items)
	}
	s.RemoveFromCart(ctx, "nope")
	if len(s.Items()) != 1 {
		t.Fatal("removing an absent product changed the cart")
	}
}

func TestCartStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	b := newMem()
	s := newCart(b, nil)
	s.AddToCart(ctx, product("mug", 5), nil)
	s.SetOpen(ctx, true)
	s.SetCompany(ctx, &domain.CompanyDetails{ID: "c1", Domain: "acme"})

	s2 := newCart(b, nil)
	if s2.Count() != 1 || !s2.IsOpen() {
		t.Fatalf("state not rehydrated: count=%d open=%v", s2.Count(), s2.IsOpen())
	}
	if c := s2.Company(); c == nil || c.Domain != "acme" {
		t.Fatalf("company: %+v", c)
	}

	s2.Clear(ctx)
	if newCart(b, nil).Count() != 0 {
		t.Fatal("clear not persisted")
	}
}

func TestCartStore_NotifiesOnAdd(t *testing.T) {
	q := &store.NoticeQueue{}
	s := newCart(newMem(), q)
	s.AddToCart(context.Background(), product("mug", 5), nil)

	notices := q.Drain()
	if len(notices) != 1 || notices[0].Kind != "cart.added" || notices[0].ProductID != "mug" {
		t.Fatalf("notices: %+v", notices)
	}
	if len(q.Drain()) != 0 {
		t.Fatal("drain should empty the queue")
	}
}
