package cache

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

type memoryItem struct {
	data      []byte
	counter   int64
	expiresAt time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// sweepEvery is the minimum gap between full scans for expired entries.
const sweepEvery = time.Minute

// Memory is an in-process Store. Values are JSON encoded so callers observe
// the same copy semantics as with Redis. Writes sweep expired entries at most
// once per sweepEvery, so keys that are never read again do not accumulate.
type Memory struct {
	mu        sync.Mutex
	items     map[string]memoryItem
	now       func() time.Time
	nextSweep time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryItem), now: time.Now}
}

// WithClock replaces the time source, for tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	item, ok := m.items[key]
	if ok && item.expired(m.now()) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok || item.data == nil {
		metrics.CacheMisses.WithLabelValues(m.Name()).Inc()
		return false, nil
	}
	if err := json.Unmarshal(item.data, dest); err != nil {
		return false, err
	}
	metrics.CacheHits.WithLabelValues(m.Name()).Inc()
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.items[key] = memoryItem{data: data, expiresAt: m.deadline(ttl)}
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *Memory) DelPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.items, k)
		}
	}
	return nil
}

func (m *Memory) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()

	item, ok := m.items[key]
	if !ok || item.expired(m.now()) {
		item = memoryItem{expiresAt: m.deadline(ttl)}
	}
	item.counter++
	m.items[key] = item
	return item.counter, nil
}

// Len reports how many entries are held, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// sweep drops expired entries. Callers hold m.mu.
func (m *Memory) sweep() {
	now := m.now()
	if now.Before(m.nextSweep) {
		return
	}
	for k, item := range m.items {
		if item.expired(now) {
			delete(m.items, k)
		}
	}
	m.nextSweep = now.Add(sweepEvery)
}

func (m *Memory) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}
