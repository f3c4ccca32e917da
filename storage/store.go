// Package storage persists the record set. The backend contract is a
// narrow keyed-document store with a hard per-field size ceiling; the
// chunked codec above it guarantees no single field ever crosses that
// ceiling by splitting payloads into numbered chunk fields.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrSizeExceeded is returned by Put when a single field would exceed the
// backend's hard ceiling even after chunking. Callers should tell the
// user to delete old data or reduce the import size.
var ErrSizeExceeded = errors.New("document field exceeds storage size limit")

// Document is one stored unit: named string fields under a single key.
type Document map[string]string

// Backend is the minimal contract every storage implementation satisfies.
type Backend interface {
	// Get returns the document at key, or ok=false when absent.
	Get(ctx context.Context, key string) (Document, bool, error)
	// Put stores doc at key. It must reject any single field larger
	// than sizeLimit bytes with ErrSizeExceeded.
	Put(ctx context.Context, key string, doc Document, sizeLimit int) error
	// Delete removes the document at key; absent keys are not an error.
	Delete(ctx context.Context, key string) error
}

// checkFieldSizes enforces the per-field ceiling shared by all backends.
func checkFieldSizes(doc Document, sizeLimit int) error {
	if sizeLimit <= 0 {
		return nil
	}
	for _, value := range doc {
		if len(value) > sizeLimit {
			return ErrSizeExceeded
		}
	}
	return nil
}

// Memory is a process-local Backend used in tests and as the default
// when no external store is configured.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]Document)}
}

func (m *Memory) Get(_ context.Context, key string) (Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	copied := make(Document, len(doc))
	for field, value := range doc {
		copied[field] = value
	}
	return copied, true, nil
}

func (m *Memory) Put(_ context.Context, key string, doc Document, sizeLimit int) error {
	if err := checkFieldSizes(doc, sizeLimit); err != nil {
		return err
	}
	copied := make(Document, len(doc))
	for field, value := range doc {
		copied[field] = value
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = copied
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}
