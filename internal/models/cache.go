package models

import (
	"encoding/json"
	"time"
)

// CacheEntry is a timestamped, TTL-tagged payload as persisted by the expiring cache
type CacheEntry struct {
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// NewCacheEntry stamps a payload with createdAt=now and expiresAt=now+ttl.
// A negative ttl is treated as zero so that ExpiresAt never precedes CreatedAt.
func NewCacheEntry(payload json.RawMessage, now time.Time, ttl time.Duration) CacheEntry {
	if ttl < 0 {
		ttl = 0
	}
	return CacheEntry{
		Payload:   payload,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsFresh reports whether the entry is within its TTL at now (boundary inclusive)
func (e CacheEntry) IsFresh(now time.Time) bool {
	return !now.After(e.ExpiresAt)
}

// Age returns how long ago the entry was written
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// CacheStats is a full-scan diagnostic over all cached entries
type CacheStats struct {
	TotalItems     int   `json:"total_items"`
	ValidItems     int   `json:"valid_items"`
	ExpiredItems   int   `json:"expired_items"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}
