// Package store persists small string values under string keys.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/where"
	"github.com/spf13/viper"
)

// ErrUnknownBackend is returned by Open for a backend name it does not know.
var ErrUnknownBackend = errors.New("unknown store backend")

// KV is a synchronous key to string store.
// Get reports false when the key is absent.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Backend names accepted by the store.backend option.
const (
	BackendGache  = "gache"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists every backend name.
var Backends = []string{BackendGache, BackendSQLite, BackendMemory}

// OpenBackend opens the named backend at its default location.
func OpenBackend(name string) (KV, error) {
	switch name {
	case BackendGache:
		return NewGache(where.Store()), nil
	case BackendSQLite:
		return OpenSQLite(where.Database())
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Open opens the configured backend. When that fails it warns and returns an in-memory store.
func Open() KV {
	name := viper.GetString(key.StoreBackend)
	kv, err := OpenBackend(name)
	if err != nil {
		log.Warnf("store: %s, falling back to memory", err)
		return NewMemory()
	}

	return kv
}

// Close releases the store if it holds resources.
func Close(kv KV) error {
	if closer, ok := kv.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// LoadJSON decodes the value under name into target.
// Missing, unreadable or corrupt values leave target untouched and return false.
func LoadJSON[T any](kv KV, name string, target *T) bool {
	raw, ok, err := kv.Get(name)
	if err != nil {
		log.Warnf("store: reading %q: %s", name, err)
		return false
	}

	if !ok || raw == "" {
		return false
	}

	var decoded T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		log.Warnf("store: corrupt value under %q: %s", name, err)
		return false
	}

	*target = decoded
	return true
}

// SaveJSON encodes v and stores it under name. Failures are logged and returned.
func SaveJSON(kv KV, name string, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		log.Errorf("store: encoding %q: %s", name, err)
		return err
	}

	if err := kv.Set(name, string(encoded)); err != nil {
		log.Errorf("store: writing %q: %s", name, err)
		return err
	}

	return nil
}
