// Package kv provides durable key-value storage backends. Each key holds one
// opaque value that is replaced as a whole on every write.
package kv

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Store is a minimal key-value medium.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open creates the named backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(dir), nil
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "taskflow.db"))
	case BackendMemory:
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
