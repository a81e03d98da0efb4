package persist

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// ErrDropped is returned when the cache refuses a write under contention or
// cost pressure.
var ErrDropped = errors.New("persist: write dropped by cache")

// MemBackend is an in-process backend on ristretto. Contents do not survive a
// restart, which makes it the session-scoped storage.
type MemBackend struct {
	c *ristretto.Cache[string, []byte]
}

// NewMemBackend creates a backend holding at most maxCostBytes of values.
func NewMemBackend(maxCostBytes int64) (*MemBackend, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10, // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &MemBackend{c: c}, nil
}

func (m *MemBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := m.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores value and waits for the write buffer so a following Get sees it.
func (m *MemBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if !m.c.SetWithTTL(key, value, int64(len(value)), ttl) {
		return ErrDropped
	}
	m.c.Wait()
	return nil
}

func (m *MemBackend) Delete(_ context.Context, key string) error {
	m.c.Del(key)
	return nil
}

func (m *MemBackend) Close() {
	m.c.Close()
}
