package tenants

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/storehubhq/storehub-backend/pkg/db/models"
	"github.com/storehubhq/storehub-backend/pkg/logger"
	redispkg "github.com/storehubhq/storehub-backend/pkg/redis"
)

// Snapshot is a point-in-time copy of a tenant row. It may be stale by up to
// the cache TTL; only status-gated behavior tolerates that, the tenant id is
// always correct.
type Snapshot struct {
	Tenant   models.Tenant `json:"tenant"`
	CachedAt time.Time     `json:"cachedAt"`
}

// Cache is the cache-aside surface in front of the tenant directory.
// Implementations swallow backend failures: a broken cache degrades to a
// miss, it never fails the request.
type Cache interface {
	TryGet(ctx context.Context, hostname string) (*Snapshot, bool)
	Set(ctx context.Context, hostname string, snap *Snapshot)
	Invalidate(ctx context.Context, hostname string)
}

// NewRedisCache builds the distributed cache used in production.
func NewRedisCache(client *redispkg.Client, ttl time.Duration, logg *logger.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logg: logg}
}

// RedisCache stores snapshots as JSON under namespaced hostname keys.
type RedisCache struct {
	client *redispkg.Client
	ttl    time.Duration
	logg   *logger.Logger
}

func (c *RedisCache) TryGet(ctx context.Context, hostname string) (*Snapshot, bool) {
	raw, err := c.client.Get(ctx, c.client.TenantHostKey(hostname))
	if err != nil {
		if !redispkg.IsNil(err) && c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "hostname", hostname), "tenant cache read failed; falling back to directory")
		}
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "hostname", hostname), "tenant cache entry corrupt; treating as miss")
		}
		return nil, false
	}
	return &snap, true
}

func (c *RedisCache) Set(ctx context.Context, hostname string, snap *Snapshot) {
	if snap == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.client.TenantHostKey(hostname), string(payload), c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "hostname", hostname), "tenant cache write failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, hostname string) {
	if err := c.client.Del(ctx, c.client.TenantHostKey(hostname)); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "hostname", hostname), "tenant cache invalidate failed")
	}
}

// NewMemoryCache builds the in-process fallback used in development and
// tests. Entries are expired lazily on read.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

// MemoryCache is a TTL map guarded by a RWMutex.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func (c *MemoryCache) TryGet(_ context.Context, hostname string) (*Snapshot, bool) {
	c.mu.RLock()
	entry, ok := c.entries[hostname]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, hostname)
		c.mu.Unlock()
		return nil, false
	}
	snap := entry.snap
	return &snap, true
}

func (c *MemoryCache) Set(_ context.Context, hostname string, snap *Snapshot) {
	if snap == nil {
		return
	}
	c.mu.Lock()
	c.entries[hostname] = memoryEntry{snap: *snap, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *MemoryCache) Invalidate(_ context.Context, hostname string) {
	c.mu.Lock()
	delete(c.entries, hostname)
	c.mu.Unlock()
}
