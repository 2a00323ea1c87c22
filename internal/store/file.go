package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileKeyValue persists the whole key space as a single JSON document on
// disk. Set re-reads the file immediately before writing so that overlapping
// writers from independent flows clobber as little as possible; this is a
// single-user control plane, not a multi-writer database, so file locking is
// deliberately not used.
type fileKeyValue struct {
	path string
	mu   sync.Mutex
}

// NewFileKeyValue returns a KeyValue backed by a JSON file at path. The file
// is created on first Set; a missing file behaves as an empty store.
func NewFileKeyValue(path string) (KeyValue, error) {
	if path == "" {
		return nil, ErrEmptyStoragePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &fileKeyValue{path: path}, nil
}

func (f *fileKeyValue) Get(_ context.Context, key string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return nil, err
	}
	return entries[key], nil
}

func (f *fileKeyValue) Set(_ context.Context, key string, value json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	entries[key] = value

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	if err = os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}

func (f *fileKeyValue) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("read storage file: %w", err)
	}

	entries := map[string]json.RawMessage{}
	if len(data) == 0 {
		return entries, nil
	}
	if err = json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode storage file: %w", err)
	}
	return entries, nil
}
