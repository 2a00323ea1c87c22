// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestParseEnv_AllFields(t *testing.T) {
	// Arrange
	envVars := map[string]string{
		"CONFIG": "/path/to/config.json",

		"ENGINE_BINARY":  "/usr/local/bin/mutagen",
		"ENGINE_TIMEOUT": "45s",

		"POLL_INTERVAL": "10s",

		"RESTORE_ATTEMPTS":           "5",
		"RESTORE_BACKOFF_BASE":       "2s",
		"RESTORE_BACKOFF_CAP":        "8s",
		"RESTORE_TERMINATE_ON_CLOSE": "true",

		"RATE_MIN_SAMPLE_INTERVAL": "750ms",

		"STORAGE_BACKEND": "sqlite",
		"STORAGE_PATH":    "/var/lib/syncpilot/state.db",

		"LOG_LEVEL":   "debug",
		"LOG_TO_FILE": "true",

		"WORKSPACE_FOLDERS": "/ws/alpha,/ws/beta",
	}
	setEnvVars(t, envVars)

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)

	assert.Equal(t, "/usr/local/bin/mutagen", cfg.Engine.Binary)
	assert.Equal(t, 45*time.Second, cfg.Engine.Timeout)

	assert.Equal(t, 10*time.Second, cfg.Poll.Interval)

	assert.Equal(t, 5, cfg.Restore.Attempts)
	assert.Equal(t, 2*time.Second, cfg.Restore.BackoffBase)
	assert.Equal(t, 8*time.Second, cfg.Restore.BackoffCap)
	assert.True(t, cfg.Restore.TerminateOnClose)

	assert.Equal(t, 750*time.Millisecond, cfg.Rate.MinSampleInterval)

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/syncpilot/state.db", cfg.Storage.Path)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.ToFile)

	assert.Equal(t, []string{"/ws/alpha", "/ws/beta"}, cfg.Workspaces.Folders)
}

func TestParseEnv_PartialFields(t *testing.T) {
	setEnvVars(t, map[string]string{
		"ENGINE_BINARY": "mutagen-beta",
		"LOG_LEVEL":     "warn",
	})

	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	require.NoError(t, err)
	assert.Equal(t, "mutagen-beta", cfg.Engine.Binary)
	assert.Equal(t, "warn", cfg.Log.Level)

	// Untouched groups keep their zero values.
	assert.Zero(t, cfg.Poll.Interval)
	assert.Empty(t, cfg.Storage.Backend)
	assert.Empty(t, cfg.Workspaces.Folders)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	setEnvVars(t, map[string]string{
		"POLL_INTERVAL": "not-a-duration",
	})

	cfg := &StructuredConfig{}
	err := parseEnv(cfg)
	assert.Error(t, err)
}
