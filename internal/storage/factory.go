// Package storage selects and opens the configured KeyValueStore backend.
package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/interfaces"
	"github.com/bobmcallan/moverwatch/internal/storage/kvfs"
	"github.com/bobmcallan/moverwatch/internal/storage/memory"
	"github.com/bobmcallan/moverwatch/internal/storage/redis"
	"github.com/bobmcallan/moverwatch/internal/storage/sqlite"
	"github.com/bobmcallan/moverwatch/internal/storage/surrealdb"
)

// NewKeyValueStore creates a key-value store based on the configuration.
// Supported backends: "file" (default), "sqlite", "surrealdb", "redis", "memory".
func NewKeyValueStore(ctx context.Context, logger *common.Logger, config *common.StorageConfig) (interfaces.KeyValueStore, error) {
	backend := config.Backend
	if backend == "" {
		backend = common.BackendFile
	}

	var (
		store interfaces.KeyValueStore
		err   error
	)

	switch backend {
	case common.BackendFile:
		store, err = wrap(kvfs.NewStore(logger, config.Path))

	case common.BackendSQLite:
		store, err = wrap(sqlite.NewStore(logger, config.SQLite.Path))

	case common.BackendSurrealDB:
		store, err = wrap(surrealdb.Open(ctx, logger, config.SurrealDB))

	case common.BackendRedis:
		store, err = wrap(redis.NewStore(ctx, logger, config.Redis))

	case common.BackendMemory:
		logger.Warn().Msg("Using in-memory KV store, data will not survive a restart")
		store = memory.NewStore()

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: file, sqlite, surrealdb, redis, memory)", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", backend, err)
	}
	return store, nil
}

// wrap avoids returning a typed nil inside a non-nil interface
func wrap[T interfaces.KeyValueStore](s T, err error) (interfaces.KeyValueStore, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
