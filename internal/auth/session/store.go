package session

import (
	"sync"
	"time"

	"github.com/brizzai/fitdash/internal/auth/providers"
	"github.com/google/uuid"
)

// Store keeps sessions in memory, keyed by a random id
type Store struct {
	provider providers.Provider
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore(provider providers.Provider) *Store {
	return &Store{
		provider: provider,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new unauthenticated session
func (st *Store) Create() *Session {
	s := New(uuid.NewString(), st.provider)
	s.lastSeen = st.now()
	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with id and marks it as seen
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		s.Touch(st.now())
	}
	return s, ok
}

// Delete closes the session and forgets it
func (st *Store) Delete(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.Close()
	}
}

// DeleteIdle closes and forgets every session not seen since cutoff and
// returns how many were removed
func (st *Store) DeleteIdle(cutoff time.Time) int {
	var idle []*Session
	st.mu.Lock()
	for id, s := range st.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}

// Range calls fn for each session until fn returns false
func (st *Store) Range(fn func(*Session) bool) {
	st.mu.RLock()
	list := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		list = append(list, s)
	}
	st.mu.RUnlock()

	for _, s := range list {
		if !fn(s) {
			return
		}
	}
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
