package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectorcore/internal/infra/kv/kvtest"
)

func newStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	return s
}

func TestStoreContract(t *testing.T) {
	s := newStore(t, filepath.Join(t.TempDir(), "kv.db"))
	defer func() { _ = s.Close() }()
	kvtest.RunContract(t, s)
	assert.Equal(t, Driver, s.Driver())
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "kv.db")
	s := newStore(t, path)
	require.NoError(t, s.Save(ctx, "configuracionApp", `{"etiquetas":{}}`))
	require.NoError(t, s.Close())

	reopened := newStore(t, path)
	defer func() { _ = reopened.Close() }()
	v, ok, err := reopened.Load(ctx, "configuracionApp")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"etiquetas":{}}`, v)
	assert.Equal(t, path, reopened.Path())
	assert.NotNil(t, reopened.DB())
}

func TestStoreErrorsAfterClose(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, s.Close())
	_, _, err := s.Load(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, s.Save(ctx, "k", "v"))
	assert.Error(t, s.Remove(ctx, "k"))
	_, err = s.Keys(ctx, "")
	assert.Error(t, err)
}
