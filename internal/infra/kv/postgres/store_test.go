package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectorcore/internal/infra/kv/kvtest"
	"inspectorcore/internal/infra/kv/postgres/testutil"
)

func openStub(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	s, err := NewStore(context.Background(), "")
	require.NoError(t, err)
	return s, conn
}

func TestStoreContract(t *testing.T) {
	s, conn := openStub(t)
	defer func() { _ = s.Close() }()
	kvtest.RunContract(t, s)
	assert.Equal(t, Driver, s.Driver())
	assert.NotNil(t, s.DB())

	var sawDDL, sawUpsert bool
	for _, stmt := range conn.Execs {
		up := strings.ToUpper(stmt)
		sawDDL = sawDDL || strings.Contains(up, "CREATE TABLE IF NOT EXISTS KV")
		sawUpsert = sawUpsert || strings.Contains(up, "ON CONFLICT(KEY)")
	}
	assert.True(t, sawDDL, "expected kv table DDL, got %v", conn.Execs)
	assert.True(t, sawUpsert, "expected upsert, got %v", conn.Execs)
}

func TestNewStoreErrors(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errors.New("boom") })
		defer restore()
		_, err := NewStore(context.Background(), "postgres://x")
		assert.ErrorContains(t, err, "open postgres")
	})
	t.Run("ping", func(t *testing.T) {
		db, conn := testutil.NewStubDB()
		conn.FailPing = true
		restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
		defer restore()
		_, err := NewStore(context.Background(), "postgres://x")
		assert.ErrorContains(t, err, "ping postgres")
	})
	t.Run("ddl", func(t *testing.T) {
		db, conn := testutil.NewStubDB()
		conn.FailExec = true
		restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
		defer restore()
		_, err := NewStore(context.Background(), "postgres://x")
		assert.ErrorContains(t, err, "ensure kv table")
	})
}

func TestStoreSurfacesDriverErrors(t *testing.T) {
	ctx := context.Background()
	s, conn := openStub(t)
	conn.FailExec = true
	conn.FailQuery = true
	assert.Error(t, s.Save(ctx, "k", "v"))
	assert.Error(t, s.Remove(ctx, "k"))
	_, _, err := s.Load(ctx, "k")
	assert.Error(t, err)
	_, err = s.Keys(ctx, "")
	assert.Error(t, err)
}
