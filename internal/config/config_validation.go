// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup. Zero values mean
// "use the built-in default" and are always valid.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Storage.Backend {
	case "", StorageBackendFile, StorageBackendSQLite, StorageBackendMemory:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidStorageConfigs, cfg.Storage.Backend)
	}

	if cfg.Restore.Attempts < 0 {
		return fmt.Errorf("%w: attempts must not be negative", ErrInvalidRestoreConfigs)
	}
	if cfg.Restore.BackoffBase < 0 || cfg.Restore.BackoffCap < 0 {
		return fmt.Errorf("%w: backoff durations must not be negative", ErrInvalidRestoreConfigs)
	}

	if cfg.Poll.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative", ErrInvalidPollConfigs)
	}

	return nil
}
