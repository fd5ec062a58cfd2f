// Package runtime hosts the connection registry, the session store and
// the broadcast plumbing. It orchestrates the system without containing
// domain rules.
package runtime

import (
	"collab-lab/contract"
	"collab-lab/domain"
	"sync"
)

// Registry owns the participant records and their delivery channels.
// IDs are strictly increasing and never reused. Disconnected records
// are retained for potential late event delivery; the Connected flag
// excludes them from broadcasts.
type Registry struct {
	mu           sync.RWMutex
	nextID       domain.ParticipantID
	participants map[domain.ParticipantID]*domain.Participant
	sinks        map[domain.ParticipantID]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[domain.ParticipantID]*domain.Participant),
		sinks:        make(map[domain.ParticipantID]contract.EventSink),
	}
}

// Connect allocates a fresh participant record. Never fails.
func (r *Registry) Connect() *domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	p := &domain.Participant{
		ID:            r.nextID,
		DisplayName:   domain.DisplayNameFor(r.nextID),
		PresenceColor: domain.RandomPresenceColor(),
		Connected:     true,
	}
	r.participants[p.ID] = p
	return p
}

// AttachSink records the delivery channel for a participant. A later
// call replaces the previous channel. Unknown ids are ignored.
func (r *Registry) AttachSink(id domain.ParticipantID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.participants[id]; !ok {
		return
	}
	r.sinks[id] = sink
}

// MarkDisconnected flips the connected flag. The record stays.
func (r *Registry) MarkDisconnected(id domain.ParticipantID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.participants[id]; ok {
		p.Connected = false
	}
}

func (r *Registry) Lookup(id domain.ParticipantID) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	return *p, true
}

// Sink returns the delivery channel for a participant, if attached.
func (r *Registry) Sink(id domain.ParticipantID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sink, ok := r.sinks[id]
	return sink, ok
}

// Size reports the number of records, disconnected ones included.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}
