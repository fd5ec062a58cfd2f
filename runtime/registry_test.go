package runtime

import (
	"collab-lab/domain"
	"collab-lab/domain/event"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	received []event.Event
}

func (s *fakeSink) Consume(_ context.Context, e event.Event) error {
	s.received = append(s.received, e)
	return nil
}

func TestRegistry_Connect_AssignsIncreasingIDs(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When several participants connect
	var ids []domain.ParticipantID
	for i := 0; i < 10; i++ {
		p := registry.Connect()
		ids = append(ids, p.ID)

		// Then each record is fully populated
		req.Equal(domain.DisplayNameFor(p.ID), p.DisplayName)
		req.Contains(domain.PresencePalette, p.PresenceColor)
		req.True(p.Connected)
	}

	// Then ids are strictly increasing, never reused
	for i := 1; i < len(ids); i++ {
		req.Greater(ids[i], ids[i-1])
	}
	req.Equal(10, registry.Size())
}

func TestRegistry_AttachSink_ReplacesPrevious(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	p := registry.Connect()

	// Given a first delivery channel
	first := &fakeSink{}
	registry.AttachSink(p.ID, first)

	sink, ok := registry.Sink(p.ID)
	req.True(ok)
	req.Same(first, sink.(*fakeSink))

	// When a later call attaches a new channel
	second := &fakeSink{}
	registry.AttachSink(p.ID, second)

	// Then the previous one is replaced
	sink, ok = registry.Sink(p.ID)
	req.True(ok)
	req.Same(second, sink.(*fakeSink))
}

func TestRegistry_AttachSink_UnknownParticipant(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When attaching to an id that was never connected
	registry.AttachSink(domain.ParticipantID(42), &fakeSink{})

	// Then nothing is recorded and state is intact
	_, ok := registry.Sink(domain.ParticipantID(42))
	req.False(ok)
	req.Equal(0, registry.Size())
}

func TestRegistry_MarkDisconnected_RetainsRecord(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	p := registry.Connect()

	// When the participant disconnects
	registry.MarkDisconnected(p.ID)

	// Then the record stays, with the connected flag flipped
	got, ok := registry.Lookup(p.ID)
	req.True(ok)
	req.False(got.Connected)

	// And marking again is a no-op
	registry.MarkDisconnected(p.ID)
	got, ok = registry.Lookup(p.ID)
	req.True(ok)
	req.False(got.Connected)

	// And ids are never reused after a disconnect
	next := registry.Connect()
	req.Greater(next.ID, p.ID)
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	_, ok := registry.Lookup(domain.ParticipantID(7))
	req.False(ok)
}
