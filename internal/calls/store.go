package calls

import (
	"sync"
)

// Store is the process-wide single slot holding the active call.
// All access goes through the mutex; callers never see the slot directly.
type Store struct {
	mu      sync.Mutex
	session *Session
}

func NewStore() *Store { return &Store{} }

// Current returns a copy of the active session.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// Replace installs sess and returns the session it overwrote, if any.
func (s *Store) Replace(sess Session) (prev Session, replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		prev, replaced = *s.session, true
	}
	cp := sess
	s.session = &cp
	return prev, replaced
}

// Update applies fn to the active session if its id matches callID.
// An empty callID matches any active session.
func (s *Store) Update(callID string, fn func(*Session)) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || (callID != "" && s.session.CallID != callID) {
		return Session{}, false
	}
	fn(s.session)
	return *s.session, true
}

// Clear empties the slot if the active session's id matches callID.
// An empty callID clears whatever is active.
func (s *Store) Clear(callID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || (callID != "" && s.session.CallID != callID) {
		return Session{}, false
	}
	prev := *s.session
	s.session = nil
	return prev, true
}
