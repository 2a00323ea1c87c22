package store

import "errors"

// Sentinel errors returned by store methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEmptyStoragePath is returned by backend constructors when no
	// storage path was configured.
	ErrEmptyStoragePath = errors.New("storage path is empty")

	// ErrInvalidProfileInput is returned by Upsert when the caller omits one
	// of the required triple fields (workspace folder, local path, remote
	// path).
	ErrInvalidProfileInput = errors.New("profile input is missing required fields")

	// ErrProfileNotFound is returned when an update targets a profile id
	// that does not exist in the backing store.
	ErrProfileNotFound = errors.New("connection profile not found")
)
