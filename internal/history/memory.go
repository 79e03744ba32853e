package history

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the most recent entries in a fixed-size ring. It is the
// store used when no database is configured; nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewMemoryStore creates a ring holding at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultLimit
	}
	return &MemoryStore{entries: make([]Entry, capacity)}
}

func (m *MemoryStore) Record(_ context.Context, e Entry) error {
	e.normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[m.next] = e
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

func (m *MemoryStore) Recent(_ context.Context, limit int) ([]Entry, error) {
	limit = clampLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	size := m.next
	if m.full {
		size = len(m.entries)
	}
	limit = min(limit, size)

	out := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (m.next - i + len(m.entries)) % len(m.entries)
		out = append(out, m.entries[idx])
	}
	return out, nil
}

// Prune rebuilds the ring without entries older than cutoff.
func (m *MemoryStore) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := m.next
	start := 0
	if m.full {
		size = len(m.entries)
		start = m.next
	}

	kept := make([]Entry, 0, size)
	for i := 0; i < size; i++ {
		e := m.entries[(start+i)%len(m.entries)]
		if !e.CreatedAt.Before(cutoff) {
			kept = append(kept, e)
		}
	}

	removed := int64(size - len(kept))
	fresh := make([]Entry, len(m.entries))
	copy(fresh, kept)
	m.entries = fresh
	m.next = len(kept) % len(fresh)
	m.full = len(kept) == len(fresh)
	return removed, nil
}

func (m *MemoryStore) Durable() bool { return false }

func (m *MemoryStore) Close() error { return nil }
