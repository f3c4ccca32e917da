// Package cache is the injected memoization collaborator for the
// discovery layer. Entries carry their generation time so callers can
// show staleness; nothing here refreshes or expires silently.
package cache

import (
	"sync"
	"time"
)

// Cache stores string values alongside the time they were generated.
type Cache interface {
	// Get returns the cached value and its generation time.
	Get(key string) (value string, generatedAt time.Time, ok bool)
	// Put stores value under key, stamped with the current time.
	Put(key, value string)
}

type memoryEntry struct {
	value       string
	generatedAt time.Time
}

// Memory is a process-local Cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(key string) (string, time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	if !ok {
		return "", time.Time{}, false
	}
	return entry.value, entry.generatedAt, true
}

func (m *Memory) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, generatedAt: time.Now()}
}
