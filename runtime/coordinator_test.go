package runtime

import (
	"collab-lab/domain"
	"collab-lab/domain/event"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestCoordinator() (*Coordinator, *Store) {
	registry := NewRegistry()
	store := NewStore()
	router := NewRouter(slog.Default(), registry, store, time.Second)
	return NewCoordinator(slog.Default(), registry, store, router, 64), store
}

func joinPayload(documentID string) []byte {
	return []byte(fmt.Sprintf(`{"type":"join-document","documentId":%q}`, documentID))
}

func updatePayload(documentID, content string) []byte {
	return []byte(fmt.Sprintf(`{"type":"document-update","documentId":%q,"content":%q}`, documentID, content))
}

func TestCoordinator_Join_RepliesWithSnapshot(t *testing.T) {
	req := require.New(t)
	coordinator, _ := newTestCoordinator()

	conn := coordinator.Connect()
	sink := &fakeSink{}
	conn.Attach(sink)

	// When the participant joins a fresh document
	conn.Send(joinPayload("doc1"))

	// Then it receives exactly one snapshot with itself in the list
	req.Len(sink.received, 1)
	snapshot, ok := sink.received[0].(event.DocumentContent)
	req.True(ok)
	req.Equal("doc1", snapshot.Document)
	req.Empty(snapshot.Content)
	req.Len(snapshot.Users, 1)
	req.Equal(conn.Participant.ID, snapshot.Users[0].ID)
	req.Equal(conn.Participant.DisplayName, snapshot.Users[0].DisplayName)
}

func TestCoordinator_SecondJoin_SharesSessionAndAnnounces(t *testing.T) {
	req := require.New(t)
	coordinator, store := newTestCoordinator()

	first := coordinator.Connect()
	second := coordinator.Connect()
	firstSink, secondSink := &fakeSink{}, &fakeSink{}
	first.Attach(firstSink)
	second.Attach(secondSink)

	first.Send(joinPayload("doc1"))
	second.Send(joinPayload("doc1"))

	// Then one shared session holds both ids
	session, ok := store.Get("doc1")
	req.True(ok)
	req.True(session.HasMember(first.Participant.ID))
	req.True(session.HasMember(second.Participant.ID))

	// And the second participant sees both members in its snapshot
	snapshot := secondSink.received[0].(event.DocumentContent)
	req.Len(snapshot.Users, 2)

	// And the first member was told about the arrival
	req.Len(firstSink.received, 2)
	joined, ok := firstSink.received[1].(event.UserJoined)
	req.True(ok)
	req.Equal(second.Participant.ID, joined.User.ID)

	// But the second participant got no user-joined about itself
	req.Len(secondSink.received, 1)
}

func TestCoordinator_Join_Idempotent(t *testing.T) {
	req := require.New(t)
	coordinator, store := newTestCoordinator()

	first := coordinator.Connect()
	second := coordinator.Connect()
	firstSink, secondSink := &fakeSink{}, &fakeSink{}
	first.Attach(firstSink)
	second.Attach(secondSink)

	first.Send(joinPayload("doc1"))
	second.Send(joinPayload("doc1"))

	// When the second participant re-joins
	second.Send(joinPayload("doc1"))

	// Then membership size is unchanged
	session, _ := store.Get("doc1")
	req.Len(session.Members, 2)

	// And the first member was told about the arrival exactly once
	var joins int
	for _, e := range firstSink.received {
		if _, ok := e.(event.UserJoined); ok {
			joins++
		}
	}
	req.Equal(1, joins)

	// While the re-joiner still got a snapshot reply per call
	var snapshots int
	for _, e := range secondSink.received {
		if _, ok := e.(event.DocumentContent); ok {
			snapshots++
		}
	}
	req.Equal(2, snapshots)
}

func TestCoordinator_Join_UnknownParticipant_NoOp(t *testing.T) {
	req := require.New(t)
	coordinator, store := newTestCoordinator()

	// When an id that never connected submits a join
	coordinator.Submit(domain.ParticipantID(999), joinPayload("ghost"))

	// Then no session is created and nothing is recorded
	req.Equal(0, store.Size())
	_, ok := store.Get("ghost")
	req.False(ok)
}

func TestCoordinator_Update_FansOutToOthers(t *testing.T) {
	req := require.New(t)
	coordinator, store := newTestCoordinator()

	first := coordinator.Connect()
	second := coordinator.Connect()
	firstSink, secondSink := &fakeSink{}, &fakeSink{}
	first.Attach(firstSink)
	second.Attach(secondSink)

	first.Send(joinPayload("doc1"))
	second.Send(joinPayload("doc1"))

	// When the second participant updates the document
	second.Send(updatePayload("doc1", "hello"))

	// Then the snapshot is replaced
	content, _, _ := store.SnapshotOf("doc1")
	req.Equal("hello", content)

	// And the first member observed the update with the author's name
	last := firstSink.received[len(firstSink.received)-1]
	updated, ok := last.(event.DocumentUpdated)
	req.True(ok)
	req.Equal("hello", updated.Content)
	req.Equal(second.Participant.DisplayName, updated.UpdatedBy)

	// And the author did not receive its own update
	for _, e := range secondSink.received {
		_, isUpdate := e.(event.DocumentUpdated)
		req.False(isUpdate)
	}
}

func TestCoordinator_Update_UnknownDocument_Discarded(t *testing.T) {
	req := require.New(t)
	coordinator, store := newTestCoordinator()

	conn := coordinator.Connect()
	sink := &fakeSink{}
	conn.Attach(sink)

	// When updating a document never joined
	conn.Send(updatePayload("ghost", "content"))

	// Then no session is created and nothing is delivered
	req.Equal(0, store.Size())
	req.Empty(sink.received)
}

func TestCoordinator_UnrecognizedEnvelope_Tolerated(t *testing.T) {
	req := require.New(t)
	coordinator, store := newTestCoordinator()

	conn := coordinator.Connect()
	sink := &fakeSink{}
	conn.Attach(sink)

	conn.Send([]byte(`{"type":"repartee","documentId":"doc1"}`))
	conn.Send([]byte(`{not even json`))

	// Then no state change and no deliveries
	req.Equal(0, store.Size())
	req.Empty(sink.received)
}

func TestCoordinator_Disconnect_SweepsAllSessions(t *testing.T) {
	req := require.New(t)
	coordinator, store := newTestCoordinator()

	leaver := coordinator.Connect()
	watcher1 := coordinator.Connect()
	watcher2 := coordinator.Connect()
	leaverSink, sink1, sink2 := &fakeSink{}, &fakeSink{}, &fakeSink{}
	leaver.Attach(leaverSink)
	watcher1.Attach(sink1)
	watcher2.Attach(sink2)

	// Given the leaver shares doc1 with watcher1 and doc2 with watcher2
	leaver.Send(joinPayload("doc1"))
	watcher1.Send(joinPayload("doc1"))
	leaver.Send(joinPayload("doc2"))
	watcher2.Send(joinPayload("doc2"))

	deliveredBefore := len(leaverSink.received)

	// When the leaver disconnects
	leaver.Close()

	// Then it is removed from every session it belonged to
	doc1, _ := store.Get("doc1")
	doc2, _ := store.Get("doc2")
	req.False(doc1.HasMember(leaver.Participant.ID))
	req.False(doc2.HasMember(leaver.Participant.ID))

	// And each remaining member got exactly one user-left
	var lefts1, lefts2 []event.UserLeft
	for _, e := range sink1.received {
		if left, ok := e.(event.UserLeft); ok {
			lefts1 = append(lefts1, left)
		}
	}
	for _, e := range sink2.received {
		if left, ok := e.(event.UserLeft); ok {
			lefts2 = append(lefts2, left)
		}
	}
	req.Len(lefts1, 1)
	req.Equal(leaver.Participant.ID, lefts1[0].UserID)
	req.Len(lefts2, 1)
	req.Equal(leaver.Participant.ID, lefts2[0].UserID)

	// And the leaver received nothing further
	req.Len(leaverSink.received, deliveredBefore)
}

func TestCoordinator_FullScenario(t *testing.T) {
	req := require.New(t)
	coordinator, store := newTestCoordinator()

	// connect P1, connect P2
	p1 := coordinator.Connect()
	p2 := coordinator.Connect()
	sink1, sink2 := &fakeSink{}, &fakeSink{}
	p1.Attach(sink1)
	p2.Attach(sink2)
	req.Greater(p2.Participant.ID, p1.Participant.ID)

	// P1 joins "doc1" and gets the empty content
	p1.Send(joinPayload("doc1"))
	snapshot1 := sink1.received[0].(event.DocumentContent)
	req.Empty(snapshot1.Content)

	// P2 joins "doc1": empty content, both members; P1 told of arrival
	p2.Send(joinPayload("doc1"))
	snapshot2 := sink2.received[0].(event.DocumentContent)
	req.Empty(snapshot2.Content)
	req.Len(snapshot2.Users, 2)

	joined := sink1.received[1].(event.UserJoined)
	req.Equal(p2.Participant.ID, joined.User.ID)

	// P2 sends an update; P1 observes it, the session records it
	p2.Send(updatePayload("doc1", "hello"))
	updated := sink1.received[2].(event.DocumentUpdated)
	req.Equal("hello", updated.Content)
	req.Equal(p2.Participant.DisplayName, updated.UpdatedBy)

	content, _, _ := store.SnapshotOf("doc1")
	req.Equal("hello", content)

	// Disconnect P2; P1 gets the user-left
	p2.Close()
	left := sink1.received[3].(event.UserLeft)
	req.Equal(p2.Participant.ID, left.UserID)
	req.Len(sink1.received, 4)
}

func TestCoordinator_OperationsOnDisconnectedID_Tolerated(t *testing.T) {
	req := require.New(t)
	coordinator, store := newTestCoordinator()

	conn := coordinator.Connect()
	sink := &fakeSink{}
	conn.Attach(sink)
	conn.Send(joinPayload("doc1"))
	conn.Close()

	// When the disconnected id keeps submitting
	coordinator.Submit(conn.Participant.ID, joinPayload("doc1"))
	coordinator.Submit(conn.Participant.ID, updatePayload("doc1", "late"))

	// Then the store still accepts the membership but nothing is
	// delivered to the disconnected participant
	session, _ := store.Get("doc1")
	req.True(session.HasMember(conn.Participant.ID))
	req.Len(sink.received, 1)

	// And disconnecting an unknown id is a silent no-op
	coordinator.Disconnect(domain.ParticipantID(999))
}
