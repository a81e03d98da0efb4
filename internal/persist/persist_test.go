package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mapBackend is a trivial Backend for exercising Store without ristretto.
type mapBackend struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMapBackend() *mapBackend { return &mapBackend{m: map[string][]byte{}} }

func (b *mapBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.m[key]
	return v, ok, nil
}

func (b *mapBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = value
	return nil
}

func (b *mapBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
	return nil
}

type snap struct {
	Items []string `json:"items"`
	N     int      `json:"n"`
}

func TestKey(t *testing.T) {
	if got := Key("cart-storage", "sid-1"); got != "cart-storage:sid-1" {
		t.Fatalf("got %q", got)
	}
	if got := Key("cart-storage", "sid-1", "acme"); got != "cart-storage:sid-1:acme" {
		t.Fatalf("got %q", got)
	}
}

func TestStoreRoundTripAndClear(t *testing.T) {
	ctx := context.Background()
	b := newMapBackend()
	s := New[snap](b, "k")

	if _, ok, err := s.Load(ctx); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}
	if err := s.Save(ctx, snap{Items: []string{"a"}, N: 1}); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Load(ctx)
	if err != nil || !ok || got.N != 1 || got.Items[0] != "a" {
		t.Fatalf("load: %+v ok=%v err=%v", got, ok, err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Load(ctx); ok {
		t.Fatal("expected empty after clear")
	}
}

func TestStoreCorruptBlob(t *testing.T) {
	ctx := context.Background()
	b := newMapBackend()
	_ = b.Set(ctx, "k", []byte("{not json"), 0)

	_, ok, err := New[snap](b, "k").Load(ctx)
	if ok || !errors.Is(err, ErrCorrupt) {
		t.Fatalf("want ErrCorrupt, got ok=%v err=%v", ok, err)
	}
}

func TestStoreVersionMismatchIsEmpty(t *testing.T) {
	ctx := context.Background()
	b := newMapBackend()
	if err := New[snap](b, "k", WithVersion(1)).Save(ctx, snap{N: 3}); err != nil {
		t.Fatal(err)
	}
	_, ok, err := New[snap](b, "k", WithVersion(2)).Load(ctx)
	if ok || err != nil {
		t.Fatalf("want empty without error, got ok=%v err=%v", ok, err)
	}
}

func TestSkipHydrationFlag(t *testing.T) {
	b := newMapBackend()
	if New[snap](b, "k").SkipHydration() {
		t.Fatal("default should hydrate automatically")
	}
	if !New[snap](b, "k", SkipHydration()).SkipHydration() {
		t.Fatal("SkipHydration option ignored")
	}
}

func TestMemBackend(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemBackend(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if err := m.Set(ctx, "a", []byte("hello"), time.Minute); err != nil {
		t.Fatal(err)
	}
	v, ok, err := m.Get(ctx, "a")
	if err != nil || !ok || string(v) != "hello" {
		t.Fatalf("get: %q ok=%v err=%v", v, ok, err)
	}
	_ = m.Delete(ctx, "a")
	if _, ok, _ := m.Get(ctx, "a"); ok {
		t.Fatal("expected miss after delete")
	}
}
