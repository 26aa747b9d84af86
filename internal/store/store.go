// Package store provides the durable key/value document store used for the
// candidate roster, the question bank and session drafts.
package store

import (
	"context"
	"fmt"
	"sync"
)

// Store is a string key/value store. Values are whole JSON documents;
// there are no partial updates.
type Store interface {
	// Get returns the value and true, or "" and false when the key is unset.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the store for the configured backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(path)
	case BackendSQLite:
		return NewSQLiteStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}

// MemoryStore keeps values in process memory. Used in tests and for
// throwaway runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
