package handlers_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/store"
)

// keyBackend is a map backend that remembers which keys were written.
type keyBackend struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (b *keyBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.m[key]
	return v, ok, nil
}

func (b *keyBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = value
	return nil
}

func (b *keyBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
	return nil
}

func (b *keyBackend) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.m))
	for k := range b.m {
		out = append(out, k)
	}
	return out
}

func TestNewDeps_CartsAndCompanyCacheAreSeparate(t *testing.T) {
	ctx := context.Background()
	cfg := config.Defaults()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	carts := &keyBackend{m: map[string][]byte{}}
	companies := &keyBackend{m: map[string][]byte{}}
	deps := handlers.NewDeps(db, cfg, carts, companies, nil)

	sc := services.Scope{Tenant: "acme", Device: "d1", Session: "s1"}
	if _, err := deps.StorefrontHandler.Front.Load(ctx, sc); err != nil {
		t.Fatal(err)
	}
	if _, err := services.NewCartService(deps.Sessions).Add(ctx, sc, "acme-hammer", nil); err != nil {
		t.Fatal(err)
	}

	for _, k := range companies.keys() {
		if !strings.HasPrefix(k, "company") {
			t.Fatalf("company cache holds %q", k)
		}
	}
	if len(companies.keys()) == 0 {
		t.Fatal("company lookup not cached")
	}
	found := false
	for _, k := range carts.keys() {
		if strings.HasPrefix(k, "company") {
			t.Fatalf("cart backend holds company entry %q", k)
		}
		found = found || strings.HasPrefix(k, store.CartNamespace)
	}
	if !found {
		t.Fatalf("cart not persisted to its backend: %v", carts.keys())
	}
}
