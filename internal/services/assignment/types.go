package assignment

import (
	"github.com/KirkDiggler/secretsanta/internal/models"
	"github.com/KirkDiggler/secretsanta/internal/shuffle"
)

// DefaultMaxAttempts bounds the rejection sampling when the config leaves it unset
const DefaultMaxAttempts = 2000

// MinParticipants is the smallest exchange that can form a ring without mutual pairs
const MinParticipants = 3

// Config holds configuration for the generator
type Config struct {
	// MaxAttempts is how many shuffles are tried before giving up (default 2000)
	MaxAttempts int

	// Shuffler is the random source
	Shuffler shuffle.Shuffler
}

// GenerateInput contains the participants and the exclusion relation
type GenerateInput struct {
	// Participants to place in the ring
	Participants []models.Participant

	// Forbidden maps a giver's name to the names they must not draw
	Forbidden map[string][]string
}

// GenerateOutput contains the generated ring
type GenerateOutput struct {
	// Edges holds one edge per participant, in ring order
	Edges []models.AssignmentEdge

	// Attempts is how many shuffles were needed
	Attempts int
}
