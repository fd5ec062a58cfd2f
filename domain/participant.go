// Package domain contains core concepts of the collaboration system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"fmt"
	"math/rand"
)

// ParticipantID is assigned by the registry at connect time.
// IDs are strictly increasing and never reused for the process lifetime.
type ParticipantID int64

// PresencePalette is the fixed set of colors assigned at connect time.
// Purely cosmetic, no uniqueness requirement.
var PresencePalette = []string{
	"#3b82f6", "#ef4444", "#10b981", "#f59e0b", "#8b5cf6", "#ec4899",
}

// Participant represents a connected actor. Records are retained after
// disconnect (Connected=false) and only excluded from delivery.
type Participant struct {
	ID            ParticipantID
	DisplayName   string
	PresenceColor string
	Connected     bool
}

// PublicUser is the identity subset safe to put on the wire.
type PublicUser struct {
	ID            ParticipantID `json:"id"`
	DisplayName   string        `json:"displayName"`
	PresenceColor string        `json:"presenceColor"`
}

func (p Participant) Public() PublicUser {
	return PublicUser{
		ID:            p.ID,
		DisplayName:   p.DisplayName,
		PresenceColor: p.PresenceColor,
	}
}

// DisplayNameFor derives the generated display name from the id.
func DisplayNameFor(id ParticipantID) string {
	return fmt.Sprintf("user%d", id)
}

// RandomPresenceColor picks uniformly from the palette.
func RandomPresenceColor() string {
	return PresencePalette[rand.Intn(len(PresencePalette))]
}
