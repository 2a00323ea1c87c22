package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags replaces the global flag set and os.Args so ParseFlags can run
// more than once per test binary.
func resetFlags(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	oldCommandLine := flag.CommandLine
	t.Cleanup(func() {
		os.Args = oldArgs
		flag.CommandLine = oldCommandLine
	})

	flag.CommandLine = flag.NewFlagSet(oldArgs[0], flag.ContinueOnError)
	os.Args = append([]string{oldArgs[0]}, args...)
}

func TestParseFlags_AllFields(t *testing.T) {
	resetFlags(t,
		"-engine-binary", "/opt/mutagen",
		"-engine-timeout", "40s",
		"-poll-interval", "7s",
		"-restore-attempts", "4",
		"-restore-backoff-base", "2s",
		"-restore-backoff-cap", "6s",
		"-terminate-on-close",
		"-rate-min-sample-interval", "250ms",
		"-storage-backend", "file",
		"-storage-path", "/tmp/state.json",
		"-log-level", "info",
		"-log-to-file",
		"-w", "/ws/alpha",
		"-w", "/ws/beta",
		"-c", "/etc/syncpilot.json",
	)

	cfg := ParseFlags()

	assert.Equal(t, "/opt/mutagen", cfg.Engine.Binary)
	assert.Equal(t, 40*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, 7*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 4, cfg.Restore.Attempts)
	assert.Equal(t, 2*time.Second, cfg.Restore.BackoffBase)
	assert.Equal(t, 6*time.Second, cfg.Restore.BackoffCap)
	assert.True(t, cfg.Restore.TerminateOnClose)
	assert.Equal(t, 250*time.Millisecond, cfg.Rate.MinSampleInterval)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/state.json", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.ToFile)
	assert.Equal(t, []string{"/ws/alpha", "/ws/beta"}, []string(cfg.Workspaces.Folders))
	assert.Equal(t, "/etc/syncpilot.json", cfg.JSONFilePath)
}

func TestParseFlags_Defaults(t *testing.T) {
	resetFlags(t)

	cfg := ParseFlags()

	assert.Empty(t, cfg.Engine.Binary)
	assert.Zero(t, cfg.Poll.Interval)
	assert.False(t, cfg.Restore.TerminateOnClose)
	assert.Empty(t, cfg.Workspaces.Folders)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseFlags_ConfigAlias(t *testing.T) {
	resetFlags(t, "-config", "/etc/alias.json")

	cfg := ParseFlags()
	assert.Equal(t, "/etc/alias.json", cfg.JSONFilePath)
}

func TestFolderList_Set(t *testing.T) {
	var folders folderList

	require.NoError(t, folders.Set("/ws/one"))
	require.NoError(t, folders.Set("/ws/two"))
	assert.Equal(t, "/ws/one,/ws/two", folders.String())

	err := folders.Set("   ")
	assert.Error(t, err)
	assert.Len(t, folders, 2)
}
