// Package blob opens the object store that archives are written to. It is
// the only package allowed to import the drivers under internal/infra/blob;
// everything else depends on blob.Store.
package blob

import (
	"context"
	"fmt"

	"inspectorcore/internal/blob/core"
	"inspectorcore/internal/infra/blob/fs"
	"inspectorcore/internal/infra/blob/memory"
	"inspectorcore/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
	// S3Config configures the s3 driver.
	S3Config = s3.Config
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrNotFound    = core.ErrNotFound
	ErrExists      = core.ErrExists
	ErrUnsupported = core.ErrUnsupported
)

// Config selects and configures a driver.
type Config struct {
	Driver Driver
	// FSRoot is the directory for the fs driver (default ./blobdata).
	FSRoot string
	S3     S3Config
}

// Open constructs the store named by cfg.Driver, defaulting to fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		st, err := fs.New(cfg.FSRoot)
		if err != nil {
			return nil, fmt.Errorf("open fs blob store: %w", err)
		}
		return st, nil
	case DriverS3:
		st, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("open s3 blob store: %w", err)
		}
		return st, nil
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: blob driver %q", ErrUnsupported, driver)
	}
}

// NewMemory returns an in-memory store for tests.
func NewMemory() Store { return memory.New() }

// NewMockS3 returns an s3 driver backed by an in-process fake bucket.
func NewMockS3(ctx context.Context) (Store, error) { return s3.NewMock(ctx) }
