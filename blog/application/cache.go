package application

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how stale a served entry may be before the next read
// refetches it.
const DefaultCacheTTL = 60 * time.Second

// Clock abstracts wall-clock time so TTL behavior is testable without real
// delays.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

type cacheEntry struct {
	value   any
	expires time.Time
	tags    []string
}

func (e *cacheEntry) hasTag(tag string) bool {
	return slices.Contains(e.tags, tag)
}

// Cache is a process-wide keyed memo of fetch results with TTL expiry and
// tag-based invalidation. It is a performance optimization only; it holds no
// state that cannot be refetched, and nothing survives a restart.
//
// Cache is explicitly constructed and passed by reference rather than being a
// package-level singleton, so tests can drive the clock.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	clock   Clock
	sf      singleflight.Group
}

// NewCache creates a Cache with the given TTL. A non-positive ttl falls back
// to DefaultCacheTTL; a nil clock falls back to the system clock.
func NewCache(ttl time.Duration, clock Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Cache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Invalidate expires the entry for key immediately. The next read refetches;
// nothing is fetched eagerly here.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateTag expires every entry carrying tag, regardless of remaining TTL.
func (c *Cache) InvalidateTag(tag string) {
	c.mu.Lock()
	for key, ent := range c.entries {
		if ent.hasTag(tag) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// lookup returns the entry for key if present. fresh reports whether it is
// still within its TTL.
func (c *Cache) lookup(key string) (value any, present bool, fresh bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ent, ok := c.entries[key]
	if !ok {
		return nil, false, false
	}
	return ent.value, true, c.clock.Now().Before(ent.expires)
}

func (c *Cache) store(key string, value any, tags []string) {
	c.mu.Lock()
	c.entries[key] = &cacheEntry{
		value:   value,
		expires: c.clock.Now().Add(c.ttl),
		tags:    tags,
	}
	c.mu.Unlock()
}

// GetOrLoad returns the cached value for key, loading it via load on a miss
// or after expiry. Concurrent callers for the same key share one upstream
// call; latecomers wait on the in-flight result instead of issuing their own.
//
// Stale-if-error: when a refetch after expiry fails but a last-good value is
// still held, the stale value is served and the failure logged. Callers only
// see an error when there is nothing at all to serve.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, tags []string, load func(context.Context) (T, error)) (T, error) {
	if v, ok, fresh := c.lookup(key); ok && fresh {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	// The flight is shared by every waiter, so it must not die with the
	// first caller's context. Values carry over; cancellation does not, and
	// the adapter's own timeout still bounds the upstream call.
	loadCtx := context.WithoutCancel(ctx)

	v, err, _ := c.sf.Do(key, func() (any, error) {
		// A concurrent flight may have repopulated the entry while this
		// caller was waiting on the singleflight lock.
		if v, ok, fresh := c.lookup(key); ok && fresh {
			return v, nil
		}

		loaded, err := load(loadCtx)
		if err != nil {
			if stale, ok, _ := c.lookup(key); ok {
				log.Warn().Err(err).Str("key", key).Msg("Refetch failed, serving last good value")
				return stale, nil
			}
			return nil, err
		}

		c.store(key, loaded, tags)
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: entry for %s holds %T, not %T", key, v, zero)
	}
	return typed, nil
}
