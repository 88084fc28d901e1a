package draw

import (
	"time"

	"github.com/KirkDiggler/secretsanta/internal/common/uuid"
	"github.com/KirkDiggler/secretsanta/internal/models"
	"github.com/KirkDiggler/secretsanta/internal/repositories/exchange"
	"github.com/KirkDiggler/secretsanta/internal/services/assignment"
)

// DefaultWriteTimeout bounds every store write when the config leaves it unset
const DefaultWriteTimeout = 10 * time.Second

// Config holds configuration for the coordinator
type Config struct {
	// Repository is the shared document store
	Repository exchange.Repository

	// Generator builds the ring when the document is absent
	Generator assignment.Generator

	// IDGenerator issues participant IDs at initialization
	IDGenerator uuid.Generator

	// Roster is used at initialization; the built-in roster when nil
	Roster *models.Roster

	// Path names the document in the store
	Path string

	// WriteTimeout bounds each write (default 10s)
	WriteTimeout time.Duration

	// StrictInit creates the document only if it is still absent
	StrictInit bool

	// StrictReveal makes reveal writes conditional and waits for them
	StrictReveal bool

	// OnWriteError is told about background reveal writes that failed
	OnWriteError func(participantID string, err error)
}

// RevealInput names the participant who is drawing
type RevealInput struct {
	ParticipantID string
}

// RevealOutput holds the result of a reveal
type RevealOutput struct {
	// Giver is the participant who drew
	Giver models.Participant

	// Recipient is who the giver buys a gift for
	Recipient models.Participant
}

// FindParticipantInput contains the name someone claims to be
type FindParticipantInput struct {
	Name string
}

// FindParticipantOutput contains the matching participant
type FindParticipantOutput struct {
	Participant models.Participant

	// HasDrawn reports whether they already revealed
	HasDrawn bool
}
