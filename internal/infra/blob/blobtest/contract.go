// Package blobtest holds the behaviour every blob driver must share.
package blobtest

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectorcore/internal/blob/core"
)

// RunContract exercises store against the core.Store contract. The store
// must start empty.
func RunContract(t *testing.T, store core.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		body := []byte(`{"hello":"world"}`)
		info, err := store.Put(ctx, "backups/1/state.json", bytes.NewReader(body), core.PutOptions{
			ContentType: "application/json",
			Metadata:    map[string]string{"locations": "3"},
		})
		require.NoError(t, err)
		assert.Equal(t, "backups/1/state.json", info.Key)
		assert.Equal(t, int64(len(body)), info.Size)
		assert.NotEmpty(t, info.ETag)

		got, rc, err := store.Get(ctx, "backups/1/state.json")
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)
		assert.Equal(t, body, data)
		assert.Equal(t, "application/json", got.ContentType)
		assert.Equal(t, "3", got.Metadata["locations"])

		head, err := store.Head(ctx, "backups/1/state.json")
		require.NoError(t, err)
		assert.Equal(t, got.Size, head.Size)
		assert.Equal(t, got.ETag, head.ETag)
	})

	t.Run("put is create only", func(t *testing.T) {
		_, err := store.Put(ctx, "backups/1/state.json", bytes.NewReader([]byte("x")), core.PutOptions{})
		require.ErrorIs(t, err, core.ErrExists)
	})

	t.Run("missing keys", func(t *testing.T) {
		_, _, err := store.Get(ctx, "nope/missing.bin")
		require.ErrorIs(t, err, core.ErrNotFound)
		_, err = store.Head(ctx, "nope/missing.bin")
		require.ErrorIs(t, err, core.ErrNotFound)
		removed, err := store.Delete(ctx, "nope/missing.bin")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("list by prefix", func(t *testing.T) {
		for _, key := range []string{"images/b.webp", "images/a.png", "images/c.jpg", "other.txt"} {
			_, err := store.Put(ctx, key, bytes.NewReader([]byte(key)), core.PutOptions{})
			require.NoError(t, err)
		}
		infos, err := store.List(ctx, "images/")
		require.NoError(t, err)
		keys := make([]string, 0, len(infos))
		for _, info := range infos {
			keys = append(keys, info.Key)
		}
		assert.Equal(t, []string{"images/a.png", "images/b.webp", "images/c.jpg"}, keys)

		all, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("delete", func(t *testing.T) {
		removed, err := store.Delete(ctx, "other.txt")
		require.NoError(t, err)
		assert.True(t, removed)
		_, err = store.Head(ctx, "other.txt")
		require.ErrorIs(t, err, core.ErrNotFound)
	})
}
