package domain

import "encoding/json"

// Command is the closed union over inbound envelopes. Unknown tags are
// represented explicitly as UnrecognizedCommand so the coordinator can
// tolerate them without surfacing an error.
type Command interface {
	DocumentID() string
}

type JoinDocumentCommand struct {
	Document string
}

func (c JoinDocumentCommand) DocumentID() string { return c.Document }

type UpdateDocumentCommand struct {
	Document string
	Content  string
}

func (c UpdateDocumentCommand) DocumentID() string { return c.Document }

type UnrecognizedCommand struct {
	Tag string
}

func (c UnrecognizedCommand) DocumentID() string { return "" }

// envelope is the raw wire shape: a type tag plus the union of all
// inbound fields.
type envelope struct {
	Type       string `json:"type"`
	DocumentID string `json:"documentId"`
	Content    string `json:"content"`
}

// ParseCommand validates a raw envelope at the transport boundary.
// A malformed payload or unknown tag yields UnrecognizedCommand, not an
// error: bad input is tolerated, the connection stays open.
func ParseCommand(raw []byte) Command {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return UnrecognizedCommand{Tag: "malformed"}
	}

	switch env.Type {
	case "join-document":
		return JoinDocumentCommand{Document: env.DocumentID}
	case "document-update":
		return UpdateDocumentCommand{Document: env.DocumentID, Content: env.Content}
	default:
		return UnrecognizedCommand{Tag: env.Type}
	}
}
