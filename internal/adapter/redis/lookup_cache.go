package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/adapter/metrics"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/domain"
)

const (
	layerMemory = "memory"
	layerRedis  = "redis"
)

// LookupCache serves status, category and supplier lists from memory, then
// Redis, then the backend. Concurrent misses for the same list share one
// backend call. rdb may be nil, in which case only the memory layer is used.
type LookupCache struct {
	rdb     goredis.Cmdable
	source  domain.LookupSource
	mem     *memoryCache
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.CacheMetrics
}

var _ domain.Lookups = (*LookupCache)(nil)

type LookupCacheOption func(*LookupCache)

func WithClock(clock clockwork.Clock) LookupCacheOption {
	return func(c *LookupCache) { c.mem.clock = clock }
}

func WithCacheMetrics(m *metrics.CacheMetrics) LookupCacheOption {
	return func(c *LookupCache) { c.metrics = m }
}

func NewLookupCache(rdb goredis.Cmdable, source domain.LookupSource, ttl time.Duration, opts ...LookupCacheOption) *LookupCache {
	c := &LookupCache{
		rdb:    rdb,
		source: source,
		ttl:    ttl,
		mem:    newMemoryCache(ttl, clockwork.NewRealClock()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *LookupCache) Lookup(ctx context.Context, kind domain.LookupKind) ([]domain.Option, error) {
	// Layer 1: in-memory cache
	if opts, ok := c.mem.get(kind); ok {
		c.hit(layerMemory)
		return opts, nil
	}
	c.miss(layerMemory)

	led := false
	v, err, shared := c.group.Do(string(kind), func() (any, error) {
		led = true
		return c.load(ctx, kind)
	})
	if shared && c.metrics != nil {
		c.metrics.Coalesced.Inc()
	}
	// The shared load ran with the leader's token. A rejected token is
	// the leader's problem, so waiters load again with their own.
	if err != nil && !led && errors.Is(err, domain.ErrUnauthorized) {
		v, err = c.load(ctx, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s failed: %w", kind, err)
	}
	return v.([]domain.Option), nil
}

// load reads Redis, then the backend, and fills the layers unless the list
// was invalidated while loading.
func (c *LookupCache) load(ctx context.Context, kind domain.LookupKind) ([]domain.Option, error) {
	gen := c.mem.generation(kind)

	// Layer 2: Redis cache
	if opts, ok := c.getCached(ctx, kind); ok {
		c.hit(layerRedis)
		c.mem.setIfCurrent(kind, opts, gen)
		return opts, nil
	}
	if c.rdb != nil {
		c.miss(layerRedis)
	}

	// Layer 3: backend. The load outlives a canceled first caller
	// because other callers may be waiting on it.
	opts, err := c.source.ListLookup(context.WithoutCancel(ctx), kind)
	if err != nil {
		return nil, err
	}
	if c.mem.setIfCurrent(kind, opts, gen) {
		c.writeCache(ctx, kind, opts)
	}
	return opts, nil
}

// Invalidate drops the list from both layers, e.g. after a category was
// created or renamed.
func (c *LookupCache) Invalidate(ctx context.Context, kind domain.LookupKind) error {
	c.mem.invalidate(kind)
	c.group.Forget(string(kind))
	if c.metrics != nil {
		c.metrics.Invalidations.WithLabelValues(string(kind)).Inc()
	}

	if c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, lookupCacheKey(kind)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate lookup cache: %w", err)
	}
	return nil
}

func (c *LookupCache) writeCache(ctx context.Context, kind domain.LookupKind, opts []domain.Option) {
	if c.rdb == nil {
		return
	}

	encoded, err := json.Marshal(opts)
	if err != nil {
		slog.Warn("Failed to marshal lookup list for Redis cache", "kind", kind, "error", err)
		return
	}

	if err := c.rdb.Set(ctx, lookupCacheKey(kind), encoded, c.ttl).Err(); err != nil {
		slog.Warn("Failed to populate Redis lookup cache", "kind", kind, "error", err)
	}
}

func (c *LookupCache) getCached(ctx context.Context, kind domain.LookupKind) ([]domain.Option, bool) {
	if c.rdb == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, lookupCacheKey(kind)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.Warn("Redis lookup cache GET failed", "kind", kind, "error", err)
		}
		return nil, false
	}

	var opts []domain.Option
	if err := json.Unmarshal(data, &opts); err != nil {
		slog.Warn("Failed to unmarshal cached lookup list", "kind", kind, "error", err)
		return nil, false
	}
	return opts, true
}

func (c *LookupCache) hit(layer string) {
	if c.metrics != nil {
		c.metrics.Hits.WithLabelValues(layer).Inc()
	}
}

func (c *LookupCache) miss(layer string) {
	if c.metrics != nil {
		c.metrics.Misses.WithLabelValues(layer).Inc()
	}
}

func lookupCacheKey(kind domain.LookupKind) string {
	return "lookup_cache:" + string(kind)
}

// memoryCache is an in-memory L1 cache with TTL-based expiry.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[domain.LookupKind]memoryCacheEntry
	gens    map[domain.LookupKind]uint64
	ttl     time.Duration
	clock   clockwork.Clock
}

type memoryCacheEntry struct {
	opts      []domain.Option
	expiresAt time.Time
}

func newMemoryCache(ttl time.Duration, clock clockwork.Clock) *memoryCache {
	return &memoryCache{
		entries: make(map[domain.LookupKind]memoryCacheEntry),
		gens:    make(map[domain.LookupKind]uint64),
		ttl:     ttl,
		clock:   clock,
	}
}

func (c *memoryCache) get(kind domain.LookupKind) ([]domain.Option, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[kind]
	if !ok || c.clock.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.opts, true
}

func (c *memoryCache) generation(kind domain.LookupKind) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[kind]
}

// setIfCurrent stores opts only if kind was not invalidated since gen was
// read.
func (c *memoryCache) setIfCurrent(kind domain.LookupKind, opts []domain.Option, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[kind] != gen {
		return false
	}
	c.entries[kind] = memoryCacheEntry{
		opts:      opts,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
	return true
}

func (c *memoryCache) invalidate(kind domain.LookupKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, kind)
	c.gens[kind]++
}
