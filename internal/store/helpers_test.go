package store_test

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
)

type memBackend struct {
	mu   sync.Mutex
	m    map[string][]byte
	sets int
}

func newMem() *memBackend { return &memBackend{m: map[string][]byte{}} }

func (b *memBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.m[key]
	return v, ok, nil
}

func (b *memBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = value
	b.sets++
	return nil
}

func (b *memBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
	return nil
}

func (b *memBackend) writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sets
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock { return &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)} }

func product(id string, price float64) domain.Product {
	return domain.Product{ID: id, Name: "Product " + id, Price: price}
}

func populated(id string, products ...domain.Product) domain.Category {
	return domain.Category{
		ID:       id,
		Name:     "Category " + id,
		Catalogs: []domain.Catalog{{ID: id + "-main", Name: "Main", Products: products}},
	}
}

func skeleton(id string) domain.Category {
	return domain.Category{ID: id, Name: "Category " + id}
}
