// Package storagetest holds the behavioural test suite shared by every
// KeyValueStore backend.
package storagetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/moverwatch/internal/interfaces"
)

// RunKeyValueStoreTests runs the backend-agnostic suite. newStore must return
// an empty store; it is called once per subtest.
func RunKeyValueStoreTests(t *testing.T, newStore func(t *testing.T) interfaces.KeyValueStore) {
	t.Helper()

	t.Run("get missing key", func(t *testing.T) {
		s := newStore(t)
		v, found, err := s.Get(context.Background(), "nope")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "wishlists", `[{"id":"1"}]`))

		v, found, err := s.Get(ctx, "wishlists")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[{"id":"1"}]`, v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", "one"))
		require.NoError(t, s.Set(ctx, "k", "two"))

		v, _, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "two", v)
	})

	t.Run("keys with separators", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, k := range []string{"cache_chart_AAPL_1M", "cache_search_BRK.B", "a/b:c"} {
			require.NoError(t, s.Set(ctx, k, "v-"+k))
		}

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		sort.Strings(keys)
		assert.Equal(t, []string{"a/b:c", "cache_chart_AAPL_1M", "cache_search_BRK.B"}, keys)

		v, found, err := s.Get(ctx, "a/b:c")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "v-a/b:c", v)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", "v"))
		require.NoError(t, s.Remove(ctx, "k"))
		require.NoError(t, s.Remove(ctx, "k"))

		_, found, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("multi remove", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			require.NoError(t, s.Set(ctx, fmt.Sprintf("cache_%d", i), "x"))
		}
		require.NoError(t, s.Set(ctx, "wishlists", "[]"))

		require.NoError(t, s.MultiRemove(ctx, []string{"cache_0", "cache_1", "cache_2", "cache_3", "cache_4", "missing"}))

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"wishlists"}, keys)
	})

	t.Run("empty value round trips", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "blank", ""))

		v, found, err := s.Get(ctx, "blank")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, v)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.Set(ctx, fmt.Sprintf("k%02d", i), fmt.Sprintf("v%d", i)))
			}(i)
		}
		wg.Wait()

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Len(t, keys, 20)
	})
}
