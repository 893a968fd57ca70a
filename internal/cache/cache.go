// Package cache implements a TTL-tagged response cache over a KeyValueStore.
//
// Entries are stored under "cache_<key>" as JSON-encoded models.CacheEntry
// values. Every operation is best-effort: store and decode failures are
// logged and reported as misses or no-ops, never returned to the caller.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/interfaces"
	"github.com/bobmcallan/moverwatch/internal/models"
)

// KeyPrefix namespaces cache entries within the shared store
const KeyPrefix = "cache_"

// Cache implements interfaces.Cache
type Cache struct {
	store  interfaces.KeyValueStore
	logger *common.Logger
	now    func() time.Time
}

var _ interfaces.Cache = (*Cache)(nil)

// New creates a cache over store
func New(store interfaces.KeyValueStore, logger *common.Logger) *Cache {
	return &Cache{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func storeKey(key string) string {
	return KeyPrefix + key
}

// Set encodes payload and stores it with expiry now+ttl
func (c *Cache) Set(ctx context.Context, key string, payload any, ttl time.Duration) {
	raw, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache set: failed to encode payload")
		return
	}

	data, err := json.Marshal(models.NewCacheEntry(raw, c.now(), ttl))
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache set: failed to encode entry")
		return
	}

	if err := c.store.Set(ctx, storeKey(key), string(data)); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache set: store write failed")
		return
	}
	c.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("Cache set")
}

// Get returns a fresh entry decoded into dest. A stale entry is removed and reported absent.
func (c *Cache) Get(ctx context.Context, key string, dest any) (*models.CacheEntry, bool) {
	entry, ok := c.load(ctx, key)
	if !ok {
		return nil, false
	}

	if !entry.IsFresh(c.now()) {
		c.logger.Debug().Str("key", key).Time("expired_at", entry.ExpiresAt).Msg("Cache entry stale, evicting")
		c.Remove(ctx, key)
		return nil, false
	}

	if !c.decode(key, entry, dest) {
		return nil, false
	}
	return entry, true
}

// Peek returns a fresh entry decoded into dest. A stale entry is reported absent but left in place.
func (c *Cache) Peek(ctx context.Context, key string, dest any) (*models.CacheEntry, bool) {
	entry, ok := c.load(ctx, key)
	if !ok || !entry.IsFresh(c.now()) {
		return nil, false
	}
	if !c.decode(key, entry, dest) {
		return nil, false
	}
	return entry, true
}

// GetStaleOrFresh returns any stored entry regardless of age, without eviction
func (c *Cache) GetStaleOrFresh(ctx context.Context, key string, dest any) (*models.CacheEntry, bool) {
	entry, ok := c.load(ctx, key)
	if !ok {
		return nil, false
	}
	if !c.decode(key, entry, dest) {
		return nil, false
	}
	return entry, true
}

// Remove deletes a single entry
func (c *Cache) Remove(ctx context.Context, key string) {
	if err := c.store.Remove(ctx, storeKey(key)); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache remove failed")
	}
}

// ClearAll removes every cache entry and returns how many were removed
func (c *Cache) ClearAll(ctx context.Context) int {
	keys := c.cacheKeys(ctx)
	if len(keys) == 0 {
		return 0
	}
	if err := c.store.MultiRemove(ctx, keys); err != nil {
		c.logger.Warn().Err(err).Int("keys", len(keys)).Msg("Cache clear failed")
		return 0
	}
	c.logger.Info().Int("removed", len(keys)).Msg("Cache cleared")
	return len(keys)
}

// ClearExpired removes stale and undecodable entries and returns how many were removed
func (c *Cache) ClearExpired(ctx context.Context) int {
	now := c.now()

	var expired []string
	for _, k := range c.cacheKeys(ctx) {
		raw, found, err := c.store.Get(ctx, k)
		if err != nil || !found {
			continue
		}
		var entry models.CacheEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || !entry.IsFresh(now) {
			expired = append(expired, k)
		}
	}

	if len(expired) == 0 {
		return 0
	}
	if err := c.store.MultiRemove(ctx, expired); err != nil {
		c.logger.Warn().Err(err).Int("keys", len(expired)).Msg("Cache expired sweep failed")
		return 0
	}
	c.logger.Info().Int("removed", len(expired)).Msg("Expired cache entries removed")
	return len(expired)
}

// Stats scans every entry. Undecodable entries count as expired.
func (c *Cache) Stats(ctx context.Context) models.CacheStats {
	now := c.now()
	var stats models.CacheStats

	for _, k := range c.cacheKeys(ctx) {
		raw, found, err := c.store.Get(ctx, k)
		if err != nil || !found {
			continue
		}
		stats.TotalItems++
		stats.TotalSizeBytes += int64(len(raw))

		var entry models.CacheEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || !entry.IsFresh(now) {
			stats.ExpiredItems++
			continue
		}
		stats.ValidItems++
	}
	return stats
}

func (c *Cache) load(ctx context.Context, key string) (*models.CacheEntry, bool) {
	raw, found, err := c.store.Get(ctx, storeKey(key))
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache get: store read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache get: corrupt entry")
		return nil, false
	}
	return &entry, true
}

func (c *Cache) decode(key string, entry *models.CacheEntry, dest any) bool {
	if dest == nil {
		return true
	}
	if err := json.Unmarshal(entry.Payload, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache get: payload does not match destination")
		return false
	}
	return true
}

func (c *Cache) cacheKeys(ctx context.Context) []string {
	all, err := c.store.Keys(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Cache: failed to enumerate keys")
		return nil
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.HasPrefix(k, KeyPrefix) {
			keys = append(keys, k)
		}
	}
	return keys
}
