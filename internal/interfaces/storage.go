// Package interfaces defines service contracts for moverwatch
package interfaces

import (
	"context"
)

// KeyValueStore is an asynchronous string key to string value store.
// Every backend (file, sqlite, surrealdb, redis, memory) implements it and
// must be safe for concurrent use.
type KeyValueStore interface {
	// Get returns the value for key. found is false when the key is absent;
	// err is reserved for backend failures.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys enumerates every stored key, in no particular order.
	Keys(ctx context.Context) ([]string, error)

	// MultiRemove deletes all of keys.
	MultiRemove(ctx context.Context, keys []string) error

	Close() error
}
