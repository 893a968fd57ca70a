// Package common provides shared utilities for moverwatch
package common

import "time"

// Freshness TTLs for cached categories
const (
	FreshnessMovers       = 5 * time.Minute
	FreshnessFundamentals = 30 * time.Minute
	FreshnessChart        = 10 * time.Minute
	FreshnessQuote        = 5 * time.Minute
	FreshnessSearch       = 15 * time.Minute
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
