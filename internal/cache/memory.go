// Package cache provides the in-process TTL cache backing station and hotel
// lookups. Entries expire lazily on read; there is no background sweep.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Krminfinity/hotel-recommender/internal/adapters/observability"
)

type entry struct {
	body      []byte
	expiresAt time.Time
}

// Memory is a concurrency-safe in-process TTL cache. Values round-trip
// through JSON so readers always get an independent copy, matching the Redis
// backend's semantics. Writes are last-writer-wins per key.
type Memory struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]entry), now: time.Now}
}

// NewMemoryWithClock injects the clock, used by tests to step past TTLs.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{items: make(map[string]entry), now: now}
}

func (m *Memory) Get(ctx context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	e, ok := m.items[key]
	if ok && m.now().After(e.expiresAt) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	if err := json.Unmarshal(e.body, dst); err != nil {
		// an entry that no longer decodes is useless; drop it and report a
		// miss so the caller re-fetches
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		observability.ObserveCache("memory", "miss")
		return false, err
	}
	observability.ObserveCache("memory", "hit")
	return true, nil
}

func (m *Memory) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[key] = entry{body: b, expiresAt: m.now().Add(time.Duration(ttlSec) * time.Second)}
	m.mu.Unlock()
	observability.ObserveCache("memory", "set")
	return nil
}

func (m *Memory) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	observability.ObserveCache("memory", "del")
	return nil
}

// Len reports live (possibly expired but not yet evicted) entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
