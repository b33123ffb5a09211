package cache

import (
	"context"
	"sync"
	"time"
)

var _ PageCache = (*Memory)(nil)

type memoryEntry struct {
	page      Page
	expiresAt time.Time
}

// Memory is an in-process PageCache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-process cache whose entries live for ttl.
func NewMemory(ttl time.Duration) *Memory {
	return NewMemoryWithClock(ttl, time.Now)
}

// NewMemoryWithClock is NewMemory with an injected clock, so tests can move
// time forward instead of sleeping.
func NewMemoryWithClock(ttl time.Duration, now func() time.Time) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns a copy of the cached page.
func (m *Memory) Get(_ context.Context, key string) (*Page, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur, ok := m.entries[key]; ok && !m.now().Before(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}

	p := e.page
	p.Body = append([]byte(nil), e.page.Body...)
	return &p, true, nil
}

// Set stores page under key until the TTL elapses. Last writer wins.
// Expired entries under other keys are dropped on the way.
func (m *Memory) Set(_ context.Context, key string, page *Page) error {
	stored := Page{
		ContentType: page.ContentType,
		Body:        append([]byte(nil), page.Body...),
	}

	now := m.now()
	m.mu.Lock()
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = memoryEntry{page: stored, expiresAt: now.Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

// Clear drops every entry.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
