package runtime

import (
	"collab-lab/domain"
	"sync"
)

// Store owns the document sessions. Sessions are created lazily on
// first join and are never evicted, even when their membership becomes
// empty: the original keeps them allocated for the process lifetime and
// this port preserves that behavior.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*domain.Session)}
}

// GetOrCreate returns a stable session handle, creating an empty one on
// first sight of the document id. Idempotent under repeated calls.
func (s *Store) GetOrCreate(documentID string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[documentID]; ok {
		return session
	}
	session := domain.NewSession(documentID)
	s.sessions[documentID] = session
	return session
}

func (s *Store) Get(documentID string) (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[documentID]
	return session, ok
}

// AddMember reports whether the membership was newly inserted, so the
// caller can distinguish a first join from a re-join.
func (s *Store) AddMember(documentID string, id domain.ParticipantID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[documentID]
	if !ok || session.HasMember(id) {
		return false
	}
	session.AddMember(id)
	return true
}

func (s *Store) RemoveMember(documentID string, id domain.ParticipantID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[documentID]; ok {
		session.RemoveMember(id)
	}
}

// SetContent replaces the snapshot unconditionally (last writer wins).
func (s *Store) SetContent(documentID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[documentID]; ok {
		session.Content = content
	}
}

// AllSessions is used during disconnect to sweep stale memberships.
func (s *Store) AllSessions() []*domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		all = append(all, session)
	}
	return all
}

// SnapshotOf captures the content and membership of one session in a
// single critical section, so join replies observe a consistent view.
func (s *Store) SnapshotOf(documentID string) (string, []domain.ParticipantID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[documentID]
	if !ok {
		return "", nil, false
	}
	return session.Content, session.MemberIDs(), true
}

// Size reports the number of sessions, empty ones included.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
