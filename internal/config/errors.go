package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when configuration
// groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates invalid state storage settings
	// (for example, an unknown backend name).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidRestoreConfigs indicates invalid restore settings
	// (for example, a negative attempt count).
	ErrInvalidRestoreConfigs = errors.New("invalid restore configuration")
	// ErrInvalidPollConfigs indicates invalid poll settings.
	ErrInvalidPollConfigs = errors.New("invalid poll configuration")

	errEmptyWorkspaceFolder = errors.New("workspace folder path must not be empty")
)
