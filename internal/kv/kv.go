// Package kv selects and opens the backing store the inspector state is
// mirrored into. It is the only package allowed to import the concrete
// drivers under internal/infra/kv.
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	kvbadger "inspectorcore/internal/infra/kv/badger"
	"inspectorcore/internal/infra/kv/memory"
	"inspectorcore/internal/infra/kv/postgres"
	"inspectorcore/internal/infra/kv/sqlite"
	"inspectorcore/pkg/domain"
)

// Supported drivers.
const (
	DriverMemory   = memory.Driver   // in-memory only (tests / ephemeral)
	DriverSQLite   = sqlite.Driver   // embedded sqlite file
	DriverPostgres = postgres.Driver // PostgreSQL server
	DriverBadger   = kvbadger.Driver // embedded BadgerDB directory
)

// ErrUnknownDriver is returned by Open for an unrecognised driver name.
var ErrUnknownDriver = errors.New("kv: unknown storage driver")

// Config describes which backing store to open.
type Config struct {
	Driver      domain.Driver
	SQLitePath  string
	PostgresDSN string
	BadgerPath  string
	// BadgerLogger receives badger's internal logs; nil silences them.
	BadgerLogger badger.Logger
}

// Open constructs the backing store named by cfg.Driver, defaulting to sqlite.
func Open(ctx context.Context, cfg Config) (domain.BackingStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	switch driver {
	case DriverMemory:
		return memory.NewStore(), nil
	case DriverSQLite:
		s, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backing store: %w", err)
		}
		return s, nil
	case DriverPostgres:
		s, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres backing store: %w", err)
		}
		return s, nil
	case DriverBadger:
		s, err := kvbadger.NewStore(kvbadger.Config{
			Path:     cfg.BadgerPath,
			InMemory: cfg.BadgerPath == "",
			Logger:   cfg.BadgerLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("open badger backing store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

// NewMemory returns an empty in-memory backing store.
func NewMemory() *memory.Store { return memory.NewStore() }

// Drivers lists the supported driver names.
func Drivers() []domain.Driver {
	return []domain.Driver{DriverMemory, DriverSQLite, DriverPostgres, DriverBadger}
}
