// Package kvtest holds the behavioural contract every backing-store driver
// must satisfy.
package kvtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectorcore/pkg/domain"
)

// RunContract exercises save/load/overwrite/remove/keys against store. The
// store must start empty.
func RunContract(t *testing.T, store domain.BackingStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent key", func(t *testing.T) {
		v, ok, err := store.Load(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("save and overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "draft_1-A-101", `{"visible":true}`))
		v, ok, err := store.Load(ctx, "draft_1-A-101")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, `{"visible":true}`, v)

		require.NoError(t, store.Save(ctx, "draft_1-A-101", `{"visible":false}`))
		v, _, err = store.Load(ctx, "draft_1-A-101")
		require.NoError(t, err)
		assert.Equal(t, `{"visible":false}`, v)
	})

	t.Run("empty and unicode values", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "informeCapturaActivoId", ""))
		v, ok, err := store.Load(ctx, "informeCapturaActivoId")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, v)

		require.NoError(t, store.Save(ctx, "draft_Baño-Señoras", "[EXCEPCIÓN] ✅"))
		v, ok, err = store.Load(ctx, "draft_Baño-Señoras")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[EXCEPCIÓN] ✅", v)
	})

	t.Run("keys by prefix sorted", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "draft_0-B-2", "{}"))
		require.NoError(t, store.Save(ctx, "checkpoints", "[]"))
		keys, err := store.Keys(ctx, domain.DraftKeyPrefix)
		require.NoError(t, err)
		assert.Equal(t, []string{"draft_0-B-2", "draft_1-A-101", "draft_Baño-Señoras"}, keys)

		all, err := store.Keys(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 5)

		none, err := store.Keys(ctx, "nothing_")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, "draft_0-B-2"))
		_, ok, err := store.Load(ctx, "draft_0-B-2")
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, store.Remove(ctx, "draft_0-B-2"), "removing an absent key is not an error")
	})
}
