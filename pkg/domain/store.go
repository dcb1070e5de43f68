package domain

import "context"

// Driver identifies a concrete backing-store implementation.
type Driver string

// BackingStore is the durable per-key string persistence the inspector store
// mirrors its state into. Implementations must be safe for concurrent use.
type BackingStore interface {
	// Load returns the value stored under key. ok is false when the key is absent.
	Load(ctx context.Context, key string) (value string, ok bool, err error)
	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Keys lists every key with the given prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Driver reports the backend in use.
	Driver() Driver
	// Close releases backend resources.
	Close() error
}

// Persisted key layout shared by every backing store.
const (
	DraftKeyPrefix         = "draft_"
	KeyQuickReports        = "informesCapturaRapida"
	KeyActiveQuickReport   = "informeCapturaActivoId"
	KeyElementReports      = "informesElementos"
	KeyActiveElementReport = "informeElementosActivoId"
	KeyCheckpoints         = "checkpoints"
	KeyConfiguration       = "configuracionApp"
)

// DraftKey returns the backing-store key holding the draft for location id.
func DraftKey(id string) string { return DraftKeyPrefix + id }
