package cache

import (
	"context"
	"log"
	"sync"
	"time"
)

// memoryEntry, memory'de saklanan değerdir.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero value = süresiz
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache, process içi cache'tir. Restart'ta kaybolur; testler ve
// tek süreçli CLI çalıştırmaları için yeterlidir.
type MemoryCache struct {
	mu     sync.RWMutex
	store  map[string]memoryEntry
	logger *log.Logger
	now    func() time.Time
}

func NewMemoryCache(logger *log.Logger) *MemoryCache {
	return &MemoryCache{
		store:  make(map[string]memoryEntry),
		logger: logger,
		now:    time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.store[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if entry.expired(m.now()) {
		m.mu.Lock()
		delete(m.store, key)
		m.mu.Unlock()
		return nil, false, nil
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.store[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.store, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Flush(_ context.Context) error {
	m.mu.Lock()
	n := len(m.store)
	m.store = make(map[string]memoryEntry)
	m.mu.Unlock()

	logf(m.logger, "⚠️  Memory cache temizlendi (%d key)", n)
	return nil
}

// Len, süresi geçmemiş key sayısıdır.
func (m *MemoryCache) Len() int {
	now := m.now()
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.store {
		if !e.expired(now) {
			n++
		}
	}
	return n
}
