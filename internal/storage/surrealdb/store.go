// Package surrealdb implements a KeyValueStore on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/interfaces"
)

const kvTable = "kv"

// kvRecord is one key in the kv table. The record id is the key itself.
type kvRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store keeps every key as a record in a single SCHEMALESS table.
type Store struct {
	db     *surrealdb.DB
	logger *common.Logger
	owned  bool
}

var _ interfaces.KeyValueStore = (*Store)(nil)

// Open connects, signs in, selects namespace/database and ensures the kv table exists.
func Open(ctx context.Context, logger *common.Logger, cfg common.SurrealDBConfig) (*Store, error) {
	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	s, err := NewStore(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}
	s.owned = true

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB KV store opened")
	return s, nil
}

// NewStore wraps an already connected db. The caller keeps ownership of db.
func NewStore(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Store, error) {
	// SurrealDB v3 errors on querying non-existent tables
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", kvTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", kvTable, err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	rec, err := surrealdb.Select[kvRecord](ctx, s.db, surrealmodels.NewRecordID(kvTable, key))
	if err != nil {
		if isNotFoundError(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to select '%s': %w", key, err)
	}
	if rec == nil {
		return "", false, nil
	}
	return rec.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	sql := "UPSERT $rid CONTENT $rec"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID(kvTable, key),
		"rec": kvRecord{Key: key, Value: value},
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]kvRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to set '%s' after retries: %w", key, lastErr)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := surrealdb.Delete[kvRecord](ctx, s.db, surrealmodels.NewRecordID(kvTable, key)); err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete '%s': %w", key, err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	results, err := surrealdb.Query[[]kvRecord](ctx, s.db, "SELECT key FROM "+kvTable, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	var keys []string
	if results != nil && len(*results) > 0 {
		for _, r := range (*results)[0].Result {
			keys = append(keys, r.Key)
		}
	}
	return keys, nil
}

func (s *Store) MultiRemove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	sql := "DELETE " + kvTable + " WHERE key IN $keys"
	if _, err := surrealdb.Query[any](ctx, s.db, sql, map[string]any{"keys": keys}); err != nil {
		return fmt.Errorf("failed to remove %d keys: %w", len(keys), err)
	}
	return nil
}

// Close closes the connection if Open created it.
func (s *Store) Close() error {
	if s.owned {
		return s.db.Close(context.Background())
	}
	return nil
}

func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}
