// Package cache memoizes capability checks per admin session.
package cache

import (
	"context"
	"sync"
	"time"

	"smpadmin/internal/sml/models"
)

type entry struct {
	value     models.Capabilities
	expiresAt time.Time
}

// Memory is a TTL map. Expired entries are dropped lazily on read and on
// every write.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	clock   func() time.Time
}

type MemoryOption func(*Memory)

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) MemoryOption {
	return func(m *Memory) { m.clock = clock }
}

func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{ttl: ttl, entries: make(map[string]entry), clock: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (*models.Capabilities, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.clock().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	v := e.value
	return &v, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value models.Capabilities) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = entry{value: value, expiresAt: now.Add(m.ttl)}
	return nil
}

// Invalidate drops key, or everything when key is empty.
func (m *Memory) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == "" {
		clear(m.entries)
		return nil
	}
	delete(m.entries, key)
	return nil
}
