// Package storage holds the durable local key-value stores that back the
// session. Writes of several keys land together or not at all.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
)

// KV is a small durable string map.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany writes all pairs as one operation.
	SetMany(ctx context.Context, values map[string]string) error
	// Delete removes the keys; absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open opens the named backend inside dir.
func Open(backend, dir string) (KV, error) {
	switch backend {
	case "", BackendFile:
		return OpenFile(filepath.Join(dir, "session.json"))
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "session.db"))
	default:
		return nil, fmt.Errorf("storage.Open: unknown backend %q", backend)
	}
}
