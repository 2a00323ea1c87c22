package store

import (
	"context"
	"encoding/json"

	"github.com/AIR-hl/syncpilot/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// KeyValue is the persistent storage collaborator: get/set of opaque JSON
// blobs keyed by string. A missing key is reported as a nil value and a nil
// error, not a failure.
type KeyValue interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
}

// ProfileStore is the durable, deduplicated record of how to reconnect each
// (workspace folder, local path, remote path) triple. Every read re-parses
// from the backing KeyValue store; there is no in-memory cache to invalidate
// across process restarts.
type ProfileStore interface {
	// List returns every stored profile. Malformed persisted records are
	// dropped with a logged warning, never an error.
	List(ctx context.Context) ([]models.ConnectionProfile, error)

	// GetByID returns the profile with the given id, or nil when absent.
	GetByID(ctx context.Context, id string) (*models.ConnectionProfile, error)

	// GetForWorkspace returns the profiles scoped to the given workspace
	// folder, compared on normalized paths.
	GetForWorkspace(ctx context.Context, folder string) ([]models.ConnectionProfile, error)

	// Upsert stores input, replacing any profile with the same normalized
	// (workspace, local, remote) key. On replacement the existing ID and, if
	// input carries none, the existing LastSessionIdentifier are preserved.
	Upsert(ctx context.Context, input models.ProfileInput) (models.ConnectionProfile, error)

	// UpdateLastSessionIdentifier records the live session backing a
	// profile.
	UpdateLastSessionIdentifier(ctx context.Context, id, sessionID string) error

	// Remove deletes a profile by id, reporting whether one existed.
	Remove(ctx context.Context, id string) (bool, error)
}
