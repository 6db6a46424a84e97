package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	val     []byte
	expires time.Time
}

type inMemory struct {
	mu      sync.RWMutex
	storage map[string]entry
}

// NewMemory creates an in-process cache with per-entry TTL.
// Expired entries are dropped lazily on access.
func NewMemory() Cache {
	return &inMemory{}
}

func (m *inMemory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.storage[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		m.mu.Lock()
		delete(m.storage, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.val, true
}

func (m *inMemory) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string]entry)
	}
	m.storage[key] = entry{val: val, expires: expires}
}
