package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// sweepEvery bounds how often an insert scans for expired claims.
const sweepEvery = time.Minute

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// memoryCache is the single-process Cache used when no Redis address is
// configured. Expired claims are swept on insert.
type memoryCache struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	namespace string
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryCache(namespace string) Cache {
	return newMemoryCache(namespace, time.Now)
}

func newMemoryCache(namespace string, now func() time.Time) *memoryCache {
	return &memoryCache{
		entries:   make(map[string]memoryEntry),
		namespace: namespace,
		now:       now,
		lastSweep: now(),
	}
}

func (m *memoryCache) SetIfAbsent(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= sweepEvery {
		m.sweep(now)
	}
	if e, ok := m.entries[key]; ok && !e.expired(now) {
		return false, nil
	}

	e := memoryEntry{value: fmt.Sprint(value)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	m.entries[key] = e
	return true, nil
}

func (m *memoryCache) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// sweep drops expired claims. Called with mu held.
func (m *memoryCache) sweep(now time.Time) {
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
	m.lastSweep = now
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return generateKey(m.namespace, operation, key)
}
