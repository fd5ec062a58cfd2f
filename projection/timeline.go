// Package projection builds local views from observed events.
// Does not emit events or interact with transports directly.
package projection

import (
	"collab-lab/domain"
	"collab-lab/domain/event"
	"context"
	"sync"
	"time"
)

// Entry is one recorded activity on a document.
type Entry struct {
	Kind        string // joined, updated, left
	UserID      domain.ParticipantID
	DisplayName string
	At          time.Time
}

// Timeline keeps a per-document activity log built from the telemetry
// stream. Read by the debug surface; never consulted by the core.
type Timeline struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

func NewTimeline() *Timeline {
	return &Timeline{entries: make(map[string][]Entry)}
}

func (t *Timeline) Consume(_ context.Context, e event.Event) error {
	now := time.Now().UTC()

	t.mu.Lock()
	defer t.mu.Unlock()

	switch evt := e.(type) {
	case event.UserJoined:
		t.entries[evt.Document] = append(t.entries[evt.Document], Entry{
			Kind:        "joined",
			UserID:      evt.User.ID,
			DisplayName: evt.User.DisplayName,
			At:          now,
		})
	case event.DocumentUpdated:
		t.entries[evt.Document] = append(t.entries[evt.Document], Entry{
			Kind:        "updated",
			DisplayName: evt.UpdatedBy,
			At:          now,
		})
	case event.UserLeft:
		t.entries[evt.Document] = append(t.entries[evt.Document], Entry{
			Kind:   "left",
			UserID: evt.UserID,
			At:     now,
		})
	}
	return nil
}

// Entries returns a copy of the activity log for one document.
func (t *Timeline) Entries(documentID string) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entries := t.entries[documentID]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
