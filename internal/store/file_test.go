package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKeyValue_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	kv, err := NewFileKeyValue(path)
	require.NoError(t, err)
	ctx := context.Background()

	// Missing key on a missing file is not an error.
	v, err := kv.Get(ctx, "absent")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, kv.Set(ctx, "k", json.RawMessage(`{"a":1}`)))
	v, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(v))

	// A second store over the same file sees the write.
	kv2, err := NewFileKeyValue(path)
	require.NoError(t, err)
	v, err = kv2.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(v))
}

func TestFileKeyValue_OverwriteKeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	kv, err := NewFileKeyValue(path)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "a", json.RawMessage(`1`)))
	require.NoError(t, kv.Set(ctx, "b", json.RawMessage(`2`)))
	require.NoError(t, kv.Set(ctx, "a", json.RawMessage(`3`)))

	v, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, `3`, string(v))

	v, err = kv.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, `2`, string(v))
}

func TestFileKeyValue_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	kv, err := NewFileKeyValue(path)
	require.NoError(t, err)

	_, err = kv.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestNewFileKeyValue_EmptyPath(t *testing.T) {
	_, err := NewFileKeyValue("")
	assert.ErrorIs(t, err, ErrEmptyStoragePath)
}
