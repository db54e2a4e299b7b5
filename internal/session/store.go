package session

import "sync"

// Store hands out one Session per draft context, creating it on first use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get returns the session for contextID, creating an empty one if needed.
func (st *Store) Get(contextID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[contextID]
	if !ok {
		s = New()
		st.sessions[contextID] = s
	}
	return s
}
