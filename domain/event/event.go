package event

import "collab-lab/domain"

// Event is an outbound notification pushed through a delivery channel.
// Each variant knows the document it concerns and its wire tag.
type Event interface {
	DocumentID() string
	Tag() string
}

// DocumentContent is sent to the requester only, on join. Users carries
// public identity fields exclusively.
type DocumentContent struct {
	Document string              `json:"documentId"`
	Content  string              `json:"content"`
	Users    []domain.PublicUser `json:"users"`
}

func (e DocumentContent) DocumentID() string { return e.Document }
func (e DocumentContent) Tag() string        { return "document-content" }

// UserJoined notifies existing members of a new arrival.
type UserJoined struct {
	Document string            `json:"documentId"`
	User     domain.PublicUser `json:"user"`
}

func (e UserJoined) DocumentID() string { return e.Document }
func (e UserJoined) Tag() string        { return "user-joined" }

// DocumentUpdated fans the new snapshot out to the rest of the session.
type DocumentUpdated struct {
	Document  string `json:"documentId"`
	Content   string `json:"content"`
	UpdatedBy string `json:"updatedBy"`
}

func (e DocumentUpdated) DocumentID() string { return e.Document }
func (e DocumentUpdated) Tag() string        { return "document-update" }

// UserLeft carries only the participant id.
type UserLeft struct {
	Document string               `json:"documentId"`
	UserID   domain.ParticipantID `json:"userId"`
}

func (e UserLeft) DocumentID() string { return e.Document }
func (e UserLeft) Tag() string        { return "user-left" }
