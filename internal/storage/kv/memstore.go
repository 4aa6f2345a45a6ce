package kv

import (
	"slices"
	"sync"
)

// MemStore is an in-process Store. Values do not survive the process.
type MemStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	failSet error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

// Get returns a copy of the value under key.
func (m *MemStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

// Set stores a copy of value, or returns the injected failure if one is set.
func (m *MemStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = slices.Clone(value)
	return nil
}

// FailWrites makes every later Set return err. A nil err restores writes.
func (m *MemStore) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSet = err
}

// Close is a no-op.
func (m *MemStore) Close() error { return nil }
