package contract

import (
	"collab-lab/domain"
	"collab-lab/domain/event"
	"context"
	"reflect"
)

// EventSink is the delivery channel capability: a one-way push of an
// event toward a single participant. The coordinator never inspects its
// internals; a sink that errors or panics must not affect other targets.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type WorkerName string

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type IRegistry interface {
	Connect() *domain.Participant
	AttachSink(id domain.ParticipantID, sink EventSink)
	MarkDisconnected(id domain.ParticipantID)
	Lookup(id domain.ParticipantID) (domain.Participant, bool)
	Sink(id domain.ParticipantID) (EventSink, bool)
}

type ISessionStore interface {
	GetOrCreate(documentID string) *domain.Session
	Get(documentID string) (*domain.Session, bool)
	AddMember(documentID string, id domain.ParticipantID) bool
	RemoveMember(documentID string, id domain.ParticipantID)
	SetContent(documentID, content string)
	AllSessions() []*domain.Session
}

type IBroadcaster interface {
	Notify(documentID string, exclude domain.ParticipantID, e event.Event)
}
