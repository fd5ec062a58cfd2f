package runtime

import (
	"collab-lab/contract"
	"collab-lab/domain"
	"collab-lab/domain/event"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

// Coordinator is the public face of the session manager. It owns the
// registry, the session store and the router, and keeps all of their
// mutations behind its own operations. There are no fatal errors here:
// unknown targets are silent no-ops and malformed envelopes are logged
// and dropped, so a misbehaving client never takes a session down.
type Coordinator struct {
	log      *slog.Logger
	registry *Registry
	store    *Store
	router   *Router

	// Telemetry mirrors every outbound event for observer sinks.
	// Best effort: dropped on backpressure, never blocks an operation.
	telemetry chan event.Event
}

func NewCoordinator(log *slog.Logger, registry *Registry, store *Store,
	router *Router, telemetryBuffer int) *Coordinator {
	return &Coordinator{
		log:       log,
		registry:  registry,
		store:     store,
		router:    router,
		telemetry: make(chan event.Event, telemetryBuffer),
	}
}

// TelemetryEvents exposes the mirror channel to the telemetry worker.
func (c *Coordinator) TelemetryEvents() <-chan event.Event {
	return c.telemetry
}

// Connection is the handle returned to a transport after connect.
// It exposes identity fields plus the operations a remote participant
// may perform, without leaking coordinator internals.
type Connection struct {
	Participant domain.Participant
	coordinator *Coordinator
}

// Attach registers the delivery channel used to push events to this
// participant. A later call replaces the previous channel.
func (c *Connection) Attach(sink contract.EventSink) {
	c.coordinator.registry.AttachSink(c.Participant.ID, sink)
}

// Send submits a raw inbound envelope on behalf of this participant.
func (c *Connection) Send(raw []byte) {
	c.coordinator.Submit(c.Participant.ID, raw)
}

// Close disconnects this participant.
func (c *Connection) Close() {
	c.coordinator.Disconnect(c.Participant.ID)
}

// AttachSink registers or replaces the delivery channel for id.
func (c *Coordinator) AttachSink(id domain.ParticipantID, sink contract.EventSink) {
	c.registry.AttachSink(id, sink)
}

// Connect allocates a new participant and returns its handle.
func (c *Coordinator) Connect() *Connection {
	p := c.registry.Connect()
	c.log.Info(fmt.Sprintf("Participant %s (ID: %d) connected", p.DisplayName, p.ID))
	return &Connection{Participant: *p, coordinator: c}
}

// Submit parses a raw envelope and dispatches by tag. Unrecognized or
// malformed envelopes are tolerated: logged, no state change, no error
// surfaced to the caller.
func (c *Coordinator) Submit(id domain.ParticipantID, raw []byte) {
	switch cmd := domain.ParseCommand(raw).(type) {
	case domain.JoinDocumentCommand:
		c.joinDocument(id, cmd.Document)
	case domain.UpdateDocumentCommand:
		c.updateDocument(id, cmd.Document, cmd.Content)
	case domain.UnrecognizedCommand:
		c.log.Warn("Unrecognized envelope", "participant_id", id, "tag", cmd.Tag)
	}
}

// joinDocument adds the participant to the session (creating it on
// first sight), replies with the current snapshot and member list, and
// announces the arrival to the rest of the session. Unknown ids never
// touch the store; a re-join replays the snapshot reply but is never
// announced again.
func (c *Coordinator) joinDocument(id domain.ParticipantID, documentID string) {
	p, ok := c.registry.Lookup(id)
	if !ok {
		return
	}

	c.store.GetOrCreate(documentID)
	firstJoin := c.store.AddMember(documentID, id)
	c.log.Info(fmt.Sprintf("Participant %s joined document %s", p.DisplayName, documentID))

	content, members, ok := c.store.SnapshotOf(documentID)
	if !ok {
		return
	}

	snapshot := event.DocumentContent{
		Document: documentID,
		Content:  content,
		Users:    c.resolveMembers(members),
	}
	c.router.SendTo(id, snapshot)
	c.mirror(snapshot)

	if !firstJoin {
		return
	}

	joined := event.UserJoined{Document: documentID, User: p.Public()}
	c.router.Notify(documentID, id, joined)
	c.mirror(joined)
}

// updateDocument overwrites the snapshot (last writer wins) and fans
// the new content out to the rest of the session. Updates for unknown
// documents are discarded: joining is a precondition for updating.
func (c *Coordinator) updateDocument(id domain.ParticipantID, documentID, content string) {
	if _, ok := c.store.Get(documentID); !ok {
		c.log.Debug("Update for unknown document dropped",
			"participant_id", id, "document_id", documentID)
		return
	}

	c.store.SetContent(documentID, content)

	updatedBy := domain.DisplayNameFor(id)
	if p, ok := c.registry.Lookup(id); ok {
		updatedBy = p.DisplayName
	}

	updated := event.DocumentUpdated{
		Document:  documentID,
		Content:   content,
		UpdatedBy: updatedBy,
	}
	c.router.Notify(documentID, id, updated)
	c.mirror(updated)
}

// Disconnect marks the participant disconnected, then sweeps every
// session it belonged to, removing the membership and notifying the
// remaining members. The registry record is retained. No transition
// leads back out of this state.
func (c *Coordinator) Disconnect(id domain.ParticipantID) {
	p, ok := c.registry.Lookup(id)
	if !ok {
		return
	}
	c.registry.MarkDisconnected(id)
	c.log.Info(fmt.Sprintf("Participant %s (ID: %d) disconnected", p.DisplayName, id))

	for _, session := range c.store.AllSessions() {
		if _, _, found := c.membershipOf(session.ID, id); !found {
			continue
		}
		c.store.RemoveMember(session.ID, id)

		left := event.UserLeft{Document: session.ID, UserID: id}
		c.router.Notify(session.ID, id, left)
		c.mirror(left)
	}
}

// membershipOf checks one session for the participant under the store lock.
func (c *Coordinator) membershipOf(documentID string, id domain.ParticipantID) (string, []domain.ParticipantID, bool) {
	content, members, ok := c.store.SnapshotOf(documentID)
	if !ok {
		return "", nil, false
	}
	return content, members, lo.Contains(members, id)
}

// resolveMembers maps member ids to their public identity fields.
// Ids missing from the registry are skipped rather than failing the
// whole reply.
func (c *Coordinator) resolveMembers(ids []domain.ParticipantID) []domain.PublicUser {
	return lo.FilterMap(ids, func(id domain.ParticipantID, _ int) (domain.PublicUser, bool) {
		p, ok := c.registry.Lookup(id)
		if !ok {
			return domain.PublicUser{}, false
		}
		return p.Public(), true
	})
}

// mirror copies an outbound event to the telemetry channel, dropping it
// when the buffer is full.
func (c *Coordinator) mirror(e event.Event) {
	select {
	case c.telemetry <- e:
	default:
		c.log.Debug("Telemetry event lost", "event", e.Tag())
	}
}
