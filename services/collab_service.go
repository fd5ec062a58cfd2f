package services

import (
	"collab-lab/contract"
	"collab-lab/domain"
	"collab-lab/runtime"
)

// ICollabService is the surface a transport wires against. It hides the
// coordinator's internals behind the four public operations.
type ICollabService interface {
	Connect() *runtime.Connection
	Submit(id domain.ParticipantID, raw []byte)
	Disconnect(id domain.ParticipantID)
	AttachSink(id domain.ParticipantID, sink contract.EventSink)
}

type CollabService struct {
	coordinator *runtime.Coordinator
}

func NewCollabService(coordinator *runtime.Coordinator) *CollabService {
	return &CollabService{coordinator: coordinator}
}

func (s *CollabService) Connect() *runtime.Connection {
	return s.coordinator.Connect()
}

func (s *CollabService) Submit(id domain.ParticipantID, raw []byte) {
	s.coordinator.Submit(id, raw)
}

func (s *CollabService) Disconnect(id domain.ParticipantID) {
	s.coordinator.Disconnect(id)
}

func (s *CollabService) AttachSink(id domain.ParticipantID, sink contract.EventSink) {
	s.coordinator.AttachSink(id, sink)
}
