// Package cache provides the ephemeral result cache sitting between the
// HTTP surface and the GitHub API.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/encryptedtouhid/github-readme-stats/pkg/metrics"
)

// Default cache configuration constants.
const (
	defaultJanitorInterval = time.Minute
)

// Cache stores computed results for a bounded time. Entries are process
// local and vanish on restart; there is deliberately no persistence.
type Cache interface {
	// Get returns the live value for key, if any.
	Get(ctx context.Context, key string) (any, bool)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration)

	// Remove drops key, if present.
	Remove(ctx context.Context, key string)

	// GetOrCreate returns the cached value for key or runs create and
	// caches its result. Errors from create are returned uncached.
	GetOrCreate(ctx context.Context, key string, ttl time.Duration, create func(ctx context.Context) (any, error)) (any, error)

	// Len returns the number of live entries.
	Len() int
}

// Option applies a configuration option to the in-memory cache.
type Option func(*Memory)

// WithJanitorInterval sets how often expired entries are swept.
func WithJanitorInterval(d time.Duration) Option {
	return func(m *Memory) {
		if d > 0 {
			m.janitorInterval = d
		}
	}
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Memory implements Cache with a mutex-guarded map and a background
// janitor that sweeps expired entries.
type Memory struct {
	mu              sync.RWMutex
	entries         map[string]entry
	janitorInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

// NewMemory creates an in-memory cache and starts its janitor.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		entries:         make(map[string]entry),
		janitorInterval: defaultJanitorInterval,
		stop:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.janitor()
	return m
}

// Get returns the live value for key, if any. Expired entries read as
// absent even before the janitor sweeps them.
func (m *Memory) Get(_ context.Context, key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. Non-positive TTLs are ignored.
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	metrics.UpdateCacheEntries(len(m.entries))
	m.mu.Unlock()
}

// Remove drops key, if present.
func (m *Memory) Remove(_ context.Context, key string) {
	m.mu.Lock()
	delete(m.entries, key)
	metrics.UpdateCacheEntries(len(m.entries))
	m.mu.Unlock()
}

// GetOrCreate returns the cached value for key or computes and stores it.
// A failed create is not cached, so transient upstream errors do not
// poison the cache window. Keys are expected to be "<kind>:..." so hit
// and miss counters can be labeled per kind.
func (m *Memory) GetOrCreate(ctx context.Context, key string, ttl time.Duration, create func(ctx context.Context) (any, error)) (any, error) {
	kind := keyKind(key)
	if v, ok := m.Get(ctx, key); ok {
		metrics.RecordCacheHit(kind)
		return v, nil
	}
	metrics.RecordCacheMiss(kind)

	v, err := create(ctx)
	if err != nil {
		return nil, err
	}
	m.Set(ctx, key, v, ttl)
	return v, nil
}

// Len returns the number of stored entries, expired ones included until
// the next sweep.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close stops the janitor goroutine.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	return nil
}

// keyKind extracts the label prefix from a "<kind>:..." cache key.
func keyKind(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(m.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, e := range m.entries {
				if now.After(e.expiresAt) {
					delete(m.entries, key)
				}
			}
			metrics.UpdateCacheEntries(len(m.entries))
			m.mu.Unlock()
		}
	}
}
