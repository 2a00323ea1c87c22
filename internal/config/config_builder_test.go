package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── newConfigBuilder ──────────────────────────────────────────────────────────

// TestNewConfigBuilder_InitialState verifies that a freshly created builder
// has no error and an empty configs slice.
func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_EmptyBuilder verifies that building with no configs returns a
// zero-value StructuredConfig.
func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

// TestBuild_PropagatesBuilderError verifies that a pre-set b.err is wrapped
// and returned, with nil config.
func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_MergesMultipleConfigs verifies that fields from multiple configs
// are merged into a single result, earlier entries winning for fields both
// set.
func TestBuild_MergesMultipleConfigs(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{
			Engine: Engine{Binary: "/opt/mutagen"},
			Poll:   Poll{Interval: 7 * time.Second},
		},
		&StructuredConfig{
			Engine:  Engine{Binary: "ignored", Timeout: 30 * time.Second},
			Storage: Storage{Backend: StorageBackendFile},
		},
	)

	cfg, err := b.build()
	require.NoError(t, err)

	assert.Equal(t, "/opt/mutagen", cfg.Engine.Binary)
	assert.Equal(t, 30*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, 7*time.Second, cfg.Poll.Interval)
	assert.Equal(t, StorageBackendFile, cfg.Storage.Backend)
}

// TestBuild_ValidationFailure verifies that a merged config violating the
// validation rules fails the build.
func TestBuild_ValidationFailure(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		Storage: Storage{Backend: "cloud"},
	})

	_, err := b.build()
	assert.ErrorIs(t, err, ErrInvalidStorageConfigs)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

// TestWithJSON_PathFromEarlierSource verifies that a JSON path supplied by an
// earlier source causes the file to be loaded and appended.
func TestWithJSON_PathFromEarlierSource(t *testing.T) {
	path := writeConfigFile(t, `{"log": {"level": "debug"}}`)

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: path})

	cfg, err := b.withJSON().build()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestWithJSON_NoPath verifies that the JSON stage is skipped entirely when
// no source provided a path.
func TestWithJSON_NoPath(t *testing.T) {
	b := newConfigBuilder()
	b.withJSON()
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// TestWithJSON_MissingFile verifies that an unreadable JSON file surfaces as
// a build error.
func TestWithJSON_MissingFile(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: "/no/such/file.json"})

	_, err := b.withJSON().build()
	assert.Error(t, err)
}

// ── validate ──────────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StructuredConfig
		wantErr error
	}{
		{name: "zero config is valid", cfg: StructuredConfig{}},
		{
			name: "known backends are valid",
			cfg:  StructuredConfig{Storage: Storage{Backend: StorageBackendSQLite}},
		},
		{
			name:    "unknown backend",
			cfg:     StructuredConfig{Storage: Storage{Backend: "etcd"}},
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name:    "negative attempts",
			cfg:     StructuredConfig{Restore: Restore{Attempts: -1}},
			wantErr: ErrInvalidRestoreConfigs,
		},
		{
			name:    "negative backoff",
			cfg:     StructuredConfig{Restore: Restore{BackoffBase: -time.Second}},
			wantErr: ErrInvalidRestoreConfigs,
		},
		{
			name:    "negative poll interval",
			cfg:     StructuredConfig{Poll: Poll{Interval: -time.Second}},
			wantErr: ErrInvalidPollConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
