package service

import "sync"

// InflightKeys is a bounded set of in-flight logical command keys. It
// prevents a second identical command (e.g. daemon-start, a restore pass for
// one folder) from being issued while the first is still outstanding. A
// duplicate acquire is a silent no-op for the caller, not an error.
type InflightKeys struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewInflightKeys returns an empty key set.
func NewInflightKeys() *InflightKeys {
	return &InflightKeys{keys: make(map[string]struct{})}
}

// TryAcquire atomically inserts key, reporting false when the key is already
// held.
func (k *InflightKeys) TryAcquire(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, held := k.keys[key]; held {
		return false
	}
	k.keys[key] = struct{}{}
	return true
}

// Release removes key. Releasing a key that is not held is a no-op.
func (k *InflightKeys) Release(key string) {
	k.mu.Lock()
	delete(k.keys, key)
	k.mu.Unlock()
}

// Held reports whether key is currently in flight.
func (k *InflightKeys) Held(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, held := k.keys[key]
	return held
}
