package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements an in-memory document store
type MemoryStore struct {
	collections map[string]map[string][]byte
	closed      bool
	mu          sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string][]byte),
	}
}

// Insert stores a new document
func (m *MemoryStore) Insert(ctx context.Context, collection, id string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string][]byte)
		m.collections[collection] = docs
	}
	if _, exists := docs[id]; exists {
		return ErrDuplicateID
	}
	docs[id] = cloneBytes(body)
	return nil
}

// Replace overwrites an existing document
func (m *MemoryStore) Replace(ctx context.Context, collection, id string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	docs := m.collections[collection]
	if _, exists := docs[id]; !exists {
		return ErrNotFound
	}
	docs[id] = cloneBytes(body)
	return nil
}

// Get retrieves a document body
func (m *MemoryStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	body, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBytes(body), nil
}

// List returns every document body in a collection, ordered by id
func (m *MemoryStore) List(ctx context.Context, collection string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	docs := m.collections[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	bodies := make([][]byte, 0, len(ids))
	for _, id := range ids {
		bodies = append(bodies, cloneBytes(docs[id]))
	}
	return bodies, nil
}

// Delete removes a document
func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	docs := m.collections[collection]
	if _, exists := docs[id]; !exists {
		return ErrNotFound
	}
	delete(docs, id)
	if len(docs) == 0 {
		delete(m.collections, collection)
	}
	return nil
}

// Collections returns the names of non-empty collections
func (m *MemoryStore) Collections(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Ping always succeeds on an open store
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed and drops its contents
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.collections = make(map[string]map[string][]byte)
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var _ Store = (*MemoryStore)(nil)
