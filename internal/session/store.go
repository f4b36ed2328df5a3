package session

import (
	"sync"
	"time"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
)

// Store is an in-memory session store. All read-modify-write access
// to a single session is serialized through a per-session mutex, so
// concurrent requests for the same conversation cannot lose updates
// or produce duplicate turn indices. Different sessions never block
// each other beyond the map lookup.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *models.Session
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (s *Store) getOrCreate(id string, now time.Time) *entry {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[id]; ok {
		return e
	}
	e = &entry{session: models.NewSession(id, now)}
	s.entries[id] = e
	return e
}

// Do runs fn with exclusive access to the session, creating it on
// first use
func (s *Store) Do(id string, now time.Time, fn func(*models.Session)) {
	e := s.getOrCreate(id, now)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
}

// View runs fn with exclusive access to an existing session and
// reports whether the session exists. fn must not retain references
// past the call.
func (s *Store) View(id string, fn func(*models.Session)) bool {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
	return true
}

// Count returns the number of tracked sessions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
