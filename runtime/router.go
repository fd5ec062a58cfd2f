package runtime

import (
	"collab-lab/contract"
	"collab-lab/domain"
	"collab-lab/domain/event"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Router delivers events to all members of a session except the sender.
// Delivery is best effort with no guarantees regarding ordering,
// durability, or retries: each eligible member receives exactly one
// delivery per call, and a failing or panicking sink never prevents
// delivery to the others.
type Router struct {
	log         *slog.Logger
	registry    *Registry
	store       *Store
	sinkTimeout time.Duration
}

func NewRouter(log *slog.Logger, registry *Registry, store *Store, sinkTimeout time.Duration) *Router {
	return &Router{
		log:         log,
		registry:    registry,
		store:       store,
		sinkTimeout: sinkTimeout,
	}
}

// Notify fans e out to every member of the session at documentID other
// than exclude. Members are eligible only while marked connected with a
// delivery channel attached. Unknown sessions are a silent no-op.
func (r *Router) Notify(documentID string, exclude domain.ParticipantID, e event.Event) {
	_, members, ok := r.store.SnapshotOf(documentID)
	if !ok {
		return
	}

	for _, id := range members {
		if id == exclude {
			continue
		}

		p, ok := r.registry.Lookup(id)
		if !ok || !p.Connected {
			continue
		}
		sink, ok := r.registry.Sink(id)
		if !ok {
			continue
		}

		r.deliver(id, sink, e)
	}
}

// SendTo targets a single participant, applying the same eligibility
// checks as Notify. Used for the join snapshot reply.
func (r *Router) SendTo(id domain.ParticipantID, e event.Event) {
	p, ok := r.registry.Lookup(id)
	if !ok || !p.Connected {
		return
	}
	sink, ok := r.registry.Sink(id)
	if !ok {
		return
	}
	r.deliver(id, sink, e)
}

// deliver pushes one event to one target, isolating panics and errors.
func (r *Router) deliver(id domain.ParticipantID, sink contract.EventSink, e event.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), r.sinkTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Delivery channel panicked",
				"participant_id", id, "event", e.Tag(), "panic", fmt.Sprintf("%v", rec))
		}
	}()

	if err := sink.Consume(ctx, e); err != nil {
		r.log.Warn("Delivery failed",
			"participant_id", id, "event", e.Tag(), "error", err)
	}
}
