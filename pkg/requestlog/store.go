package requestlog

import (
	"sync"

	"github.com/google/uuid"
)

// Logger is the minimal interface for recording completed responses. The
// dispatcher accepts this interface so any implementation can observe
// replay traffic.
type Logger interface {
	Log(entry *Entry)
}

// DefaultMaxEntries bounds the in-memory store when no explicit capacity
// is given.
const DefaultMaxEntries = 1000

// MemoryStore is a bounded in-memory Logger. When capacity is exceeded the
// oldest entries are evicted.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
	max     int
}

// NewMemoryStore creates a MemoryStore holding at most maxEntries entries.
// Non-positive values fall back to DefaultMaxEntries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{max: maxEntries}
}

// Log records an entry, assigning an ID if the caller left it empty.
func (s *MemoryStore) Log(entry *Entry) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	if len(s.entries) > s.max {
		overflow := len(s.entries) - s.max
		s.entries = s.entries[overflow:]
	}
}

// List returns the stored entries, oldest first.
func (s *MemoryStore) List() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Count returns the number of stored entries.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes all stored entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
