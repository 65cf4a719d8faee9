// Package kvstoretest holds the behavioural test suite every kvstore.Storage
// backend must pass.
package kvstoretest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/detectkit/pkg/kvstore"
)

// Run exercises storage. Keys are prefixed with prefix so suites can share a
// backend instance.
func Run(t *testing.T, storage kvstore.Storage, prefix string) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, ok, err := storage.Get(ctx, prefix+"missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set get overwrite", func(t *testing.T) {
		key := prefix + "token"
		require.NoError(t, storage.Set(ctx, key, "a"))
		v, ok, err := storage.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "a", v)

		require.NoError(t, storage.Set(ctx, key, "b"))
		v, _, err = storage.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "b", v)
	})

	t.Run("empty value is present", func(t *testing.T) {
		key := prefix + "empty"
		require.NoError(t, storage.Set(ctx, key, ""))
		_, ok, err := storage.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		key := prefix + "deleted"
		require.NoError(t, storage.Set(ctx, key, "x"))
		require.NoError(t, storage.Delete(ctx, key))
		_, ok, err := storage.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)

		assert.NoError(t, storage.Delete(ctx, key), "deleting an absent key")
	})

	t.Run("empty key", func(t *testing.T) {
		assert.ErrorIs(t, storage.Set(ctx, " ", "x"), kvstore.ErrEmptyKey)
		_, _, err := storage.Get(ctx, "")
		assert.ErrorIs(t, err, kvstore.ErrEmptyKey)
		assert.ErrorIs(t, storage.Delete(ctx, ""), kvstore.ErrEmptyKey)
	})

	inc, ok := storage.(kvstore.Incrementer)
	if !ok {
		return
	}

	t.Run("incr", func(t *testing.T) {
		key := prefix + "counter"
		n, err := inc.Incr(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = inc.Incr(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		v, _, err := storage.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "2", v)
	})

	t.Run("incr continues stored value", func(t *testing.T) {
		key := prefix + "legacy_counter"
		require.NoError(t, storage.Set(ctx, key, "5"))
		n, err := inc.Incr(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(6), n)
	})

	t.Run("concurrent incr", func(t *testing.T) {
		key := prefix + "concurrent"
		const workers = 20

		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := inc.Incr(ctx, key)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		v, _, err := storage.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(workers), kvstore.ParseCounter(v, true))
	})

	t.Run("incr restarts non-integer value", func(t *testing.T) {
		for _, stored := range []string{"abc", "1.5"} {
			key := prefix + "garbled_" + stored
			require.NoError(t, storage.Set(ctx, key, stored))

			n, err := inc.Incr(ctx, key)
			require.NoError(t, err, stored)
			assert.Equal(t, int64(1), n, stored)

			v, ok, err := storage.Get(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "1", v, stored)
		}
	})
}
