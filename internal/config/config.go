// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for syncpilot.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Engine holds settings for the external synchronization engine binary.
	Engine Engine `envPrefix:"ENGINE_"`

	// Poll holds the background session polling settings.
	Poll Poll `envPrefix:"POLL_"`

	// Restore holds the workspace restore orchestration settings.
	Restore Restore `envPrefix:"RESTORE_"`

	// Rate holds the transfer rate estimation settings.
	Rate Rate `envPrefix:"RATE_"`

	// Storage holds the local state persistence settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Log holds logging settings.
	Log Log `envPrefix:"LOG_"`

	// Workspaces holds the workspace folders restored at startup.
	Workspaces Workspaces `envPrefix:"WORKSPACE_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Engine configures how the external synchronization engine is invoked.
type Engine struct {
	// Binary is the engine executable name or path. Empty means "mutagen"
	// resolved through PATH.
	// Env: ENGINE_BINARY
	Binary string `env:"BINARY"`

	// Timeout bounds every non-streaming engine invocation (e.g. "30s").
	// Env: ENGINE_TIMEOUT
	Timeout time.Duration `env:"TIMEOUT"`
}

// Poll configures the background session poll job.
type Poll struct {
	// Interval is the delay between session list polls (e.g. "5s").
	// Env: POLL_INTERVAL
	Interval time.Duration `env:"INTERVAL"`
}

// Restore configures workspace restore orchestration.
type Restore struct {
	// Attempts is the per-step retry ceiling during a restore pass.
	// Env: RESTORE_ATTEMPTS
	Attempts int `env:"ATTEMPTS"`

	// BackoffBase scales the linear retry backoff (e.g. "1s").
	// Env: RESTORE_BACKOFF_BASE
	BackoffBase time.Duration `env:"BACKOFF_BASE"`

	// BackoffCap caps the retry backoff delay (e.g. "5s").
	// Env: RESTORE_BACKOFF_CAP
	BackoffCap time.Duration `env:"BACKOFF_CAP"`

	// TerminateOnClose terminates sessions instead of pausing them when a
	// workspace folder is closed. Off by default: closing a folder should
	// not destroy sync history.
	// Env: RESTORE_TERMINATE_ON_CLOSE
	TerminateOnClose bool `env:"TERMINATE_ON_CLOSE"`
}

// Rate configures transfer rate estimation.
type Rate struct {
	// MinSampleInterval is the minimum spacing between rate samples; pairs
	// of polls closer than this are ignored (e.g. "500ms").
	// Env: RATE_MIN_SAMPLE_INTERVAL
	MinSampleInterval time.Duration `env:"MIN_SAMPLE_INTERVAL"`
}

// Storage configures where syncpilot keeps its own state (connection
// profiles and related bookkeeping). The engine owns all session state.
type Storage struct {
	// Backend selects the persistence backend: "file" (default), "sqlite",
	// or "memory".
	// Env: STORAGE_BACKEND
	Backend string `env:"BACKEND"`

	// Path is the state file path for the file backend, or the database
	// path for the sqlite backend.
	// Env: STORAGE_PATH
	Path string `env:"PATH"`
}

// Log configures the logger.
type Log struct {
	// Level is the minimum emitted level: "debug", "info", "warn", "error".
	// Env: LOG_LEVEL
	Level string `env:"LEVEL"`

	// ToFile writes log output to a file next to the executable instead of
	// stdout.
	// Env: LOG_TO_FILE
	ToFile bool `env:"TO_FILE"`
}

// Workspaces lists the workspace folders whose sessions are restored at
// startup.
type Workspaces struct {
	// Folders are local folder paths. Each one gets a restore pass when the
	// application starts.
	// Env: WORKSPACE_FOLDERS (comma-separated)
	Folders []string `env:"FOLDERS"`
}

// Storage backend names accepted by [Storage.Backend].
const (
	StorageBackendFile   = "file"
	StorageBackendSQLite = "sqlite"
	StorageBackendMemory = "memory"
)

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (an earlier source wins for fields set in both):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
