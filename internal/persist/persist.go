// Package persist is a key-namespaced, serialized snapshot store used by the
// catalog, cart and wishlist stores.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCorrupt is returned by Load when the stored blob cannot be decoded.
var ErrCorrupt = errors.New("persisted state is corrupt")

// Backend stores raw blobs. A ttl of zero means no expiry.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key joins a namespace and scope parts into a storage key.
func Key(namespace string, scope ...string) string {
	parts := append([]string{namespace}, scope...)
	return strings.Join(parts, ":")
}

type envelope[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// Store persists full snapshots of a T under one key.
type Store[T any] struct {
	backend       Backend
	key           string
	version       int
	ttl           time.Duration
	skipHydration bool
}

type Option func(*options)

type options struct {
	version       int
	ttl           time.Duration
	skipHydration bool
}

// WithVersion tags snapshots; blobs written with another version load as empty.
func WithVersion(v int) Option { return func(o *options) { o.version = v } }

// WithTTL bounds how long the backend keeps an untouched snapshot.
func WithTTL(d time.Duration) Option { return func(o *options) { o.ttl = d } }

// SkipHydration marks the store for manual hydration by its owner.
func SkipHydration() Option { return func(o *options) { o.skipHydration = true } }

func New[T any](b Backend, key string, opts ...Option) *Store[T] {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return &Store[T]{backend: b, key: key, version: o.version, ttl: o.ttl, skipHydration: o.skipHydration}
}

func (s *Store[T]) Key() string { return s.key }

// SkipHydration reports whether the owner hydrates manually.
func (s *Store[T]) SkipHydration() bool { return s.skipHydration }

// Load reads the candidate snapshot. ok is false when nothing usable is stored.
func (s *Store[T]) Load(ctx context.Context) (T, bool, error) {
	var zero T
	raw, found, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return zero, false, fmt.Errorf("load %s: %w", s.key, err)
	}
	if !found || len(raw) == 0 {
		return zero, false, nil
	}
	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, false, fmt.Errorf("load %s: %w: %v", s.key, ErrCorrupt, err)
	}
	if env.Version != s.version {
		return zero, false, nil
	}
	return env.State, true, nil
}

func (s *Store[T]) Save(ctx context.Context, state T) error {
	raw, err := json.Marshal(envelope[T]{State: state, Version: s.version})
	if err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	if err := s.backend.Set(ctx, s.key, raw, s.ttl); err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	return nil
}

func (s *Store[T]) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear %s: %w", s.key, err)
	}
	return nil
}
