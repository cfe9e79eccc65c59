package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/aleksaelezovic/sparqlconsole/pkg/console"
)

const defaultMaxSessions = 256

// sessionStore keeps console states in memory. The oldest session is
// evicted once max is reached.
type sessionStore struct {
	mu     sync.Mutex
	states map[uuid.UUID]console.State
	order  []uuid.UUID
	max    int
}

func newSessionStore(max int) *sessionStore {
	return &sessionStore{
		states: make(map[uuid.UUID]console.State),
		max:    max,
	}
}

// create stores a new session and returns its ID
func (s *sessionStore) create(state console.State) uuid.UUID {
	id := uuid.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.order) >= s.max {
		delete(s.states, s.order[0])
		s.order = s.order[1:]
	}
	s.states[id] = state
	s.order = append(s.order, id)
	return id
}

func (s *sessionStore) get(id uuid.UUID) (console.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[id]
	return state, ok
}

// update applies fn to a session under the lock and stores the result
func (s *sessionStore) update(id uuid.UUID, fn func(console.State) console.State) (console.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[id]
	if !ok {
		return console.State{}, false
	}
	state = fn(state)
	s.states[id] = state
	return state, true
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
