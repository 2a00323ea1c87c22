package store

import (
	"context"
	"encoding/json"
	"sync"
)

// memoryKeyValue is an in-process KeyValue used by tests and the
// storage-backend "memory" configuration.
type memoryKeyValue struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

// NewMemoryKeyValue returns an empty in-memory KeyValue.
func NewMemoryKeyValue() KeyValue {
	return &memoryKeyValue{entries: make(map[string]json.RawMessage)}
}

func (m *memoryKeyValue) Get(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[key], nil
}

func (m *memoryKeyValue) Set(_ context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append(json.RawMessage(nil), value...)
	return nil
}
