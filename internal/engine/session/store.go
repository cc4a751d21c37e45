package session

import (
	"sync"
	"time"

	"qrgen/internal/engine/pipeline"
)

const (
	DefaultTTL        = 30 * time.Minute
	DefaultMaxEntries = 10000
)

type entry struct {
	state      pipeline.State
	lastAccess time.Time
}

// Store caches pipeline state per browser session. Entries expire after
// ttl without access; when the store is full the least recently used entry
// is evicted.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func NewStore(ttl time.Duration, maxEntries int) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		entries:    make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) Get(id string) (pipeline.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return pipeline.State{}, false
	}

	now := s.now()
	if now.Sub(e.lastAccess) > s.ttl {
		delete(s.entries, id)
		return pipeline.State{}, false
	}

	e.lastAccess = now
	return e.state, true
}

// Put replaces the state for id, evicting the least recently used entry
// when the store is full.
func (s *Store) Put(id string, state pipeline.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; !exists && len(s.entries) >= s.maxEntries {
		s.evictOldest()
	}

	s.entries[id] = &entry{state: state, lastAccess: s.now()}
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Sweep removes expired entries and reports how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.lastAccess) > s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// caller holds s.mu
func (s *Store) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.entries {
		if oldestID == "" || e.lastAccess.Before(oldest) {
			oldestID = id
			oldest = e.lastAccess
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
	}
}
