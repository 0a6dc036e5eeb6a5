package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/adlytics/govern/internal/models"
)

const (
	actorCacheTTL      = 60 * time.Second
	negativeCacheTTL   = 15 * time.Second
	maxCacheEntries    = 10000
	cacheCleanupPeriod = 60 * time.Second
)

type cachedActor struct {
	actor     models.Actor
	err       error
	fetchedAt time.Time
}

// ttl returns the appropriate TTL for this entry. Failed lookups expire
// faster so a revoked-then-restored session recovers quickly.
func (ca cachedActor) ttl() time.Duration {
	if ca.err != nil {
		return negativeCacheTTL
	}
	return actorCacheTTL
}

// hashToken returns a hex-encoded SHA-256 hash of the session token so raw
// tokens are never stored in memory.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// CachedActorLookup wraps an ActorLookup with a bounded in-memory cache.
// Concurrent resolutions of the same token are collapsed into a single
// inner lookup via singleflight, so a burst of requests from one dashboard
// session costs one database round trip.
type CachedActorLookup struct {
	inner ActorLookup
	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]cachedActor
}

// NewCachedActorLookup creates a caching wrapper around the given ActorLookup.
// The provided context controls the lifetime of the background eviction goroutine.
func NewCachedActorLookup(ctx context.Context, inner ActorLookup) *CachedActorLookup {
	c := &CachedActorLookup{
		inner: inner,
		cache: make(map[string]cachedActor),
	}
	go c.evictLoop(ctx)
	return c
}

// evictLoop periodically removes expired entries from the cache.
func (c *CachedActorLookup) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(cacheCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for k, v := range c.cache {
				if now.Sub(v.fetchedAt) >= v.ttl() {
					delete(c.cache, k)
				}
			}
			c.mu.Unlock()
		}
	}
}

// ResolveActor returns a cached actor or delegates to the inner lookup.
// Failed lookups are negatively cached to prevent invalid tokens hammering
// the sessions table.
func (c *CachedActorLookup) ResolveActor(ctx context.Context, token string) (models.Actor, error) {
	ht := hashToken(token)

	c.mu.RLock()
	entry, ok := c.cache[ht]
	if ok && time.Since(entry.fetchedAt) < entry.ttl() {
		c.mu.RUnlock()
		return entry.actor, entry.err
	}
	c.mu.RUnlock()

	// Cache miss or expired. singleflight collapses concurrent misses for
	// the same token into one inner call.
	v, err, _ := c.group.Do(ht, func() (any, error) {
		actor, lookupErr := c.inner.ResolveActor(ctx, token)
		c.store(ht, actor, lookupErr)
		return actor, lookupErr
	})
	if err != nil {
		return models.Actor{}, err
	}
	return v.(models.Actor), nil
}

// store inserts an entry, evicting expired and then arbitrary entries if the
// cache is at capacity.
func (c *CachedActorLookup) store(key string, actor models.Actor, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.cache) >= maxCacheEntries {
		now := time.Now()
		for k, v := range c.cache {
			if now.Sub(v.fetchedAt) >= v.ttl() {
				delete(c.cache, k)
			}
		}
		for k := range c.cache {
			if len(c.cache) < maxCacheEntries {
				break
			}
			delete(c.cache, k)
		}
	}
	c.cache[key] = cachedActor{actor: actor, err: err, fetchedAt: time.Now()}
}
