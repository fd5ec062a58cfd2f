package domain

// Set holds participant ids with set semantics.
type Set map[ParticipantID]struct{}

// Session is the shared state for one document: the last-writer-wins
// content snapshot plus the current membership. The id is the externally
// supplied document identifier, never generated here.
type Session struct {
	ID      string
	Content string
	Members Set
}

func NewSession(id string) *Session {
	return &Session{
		ID:      id,
		Members: make(Set),
	}
}

// AddMember is a no-op if the participant is already a member.
func (s *Session) AddMember(id ParticipantID) {
	s.Members[id] = struct{}{}
}

// RemoveMember is a no-op if the participant is not a member.
func (s *Session) RemoveMember(id ParticipantID) {
	delete(s.Members, id)
}

func (s *Session) HasMember(id ParticipantID) bool {
	_, ok := s.Members[id]
	return ok
}

// MemberIDs returns the membership in unspecified order.
func (s *Session) MemberIDs() []ParticipantID {
	ids := make([]ParticipantID, 0, len(s.Members))
	for id := range s.Members {
		ids = append(ids, id)
	}
	return ids
}
