package assignment

import (
	"fmt"

	"github.com/KirkDiggler/secretsanta/internal/models"
)

// Validate checks that edges form exactly one cycle through every participant,
// that nobody draws themselves and that no edge is forbidden.
// A nil forbidden relation only checks the ring shape.
func Validate(participants []models.Participant, edges []models.AssignmentEdge, forbidden map[string][]string) error {
	if len(edges) != len(participants) {
		return fmt.Errorf("%w: %d edges for %d participants", ErrInvalidRing, len(edges), len(participants))
	}

	byID := make(map[string]models.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	ex := newExclusions(forbidden)
	next := make(map[string]string, len(edges))
	received := make(map[string]bool, len(edges))

	for _, edge := range edges {
		giver, ok := byID[edge.GiverID]
		if !ok {
			return fmt.Errorf("%w: unknown giver %q", ErrInvalidRing, edge.GiverID)
		}
		recipient, ok := byID[edge.RecipientID]
		if !ok {
			return fmt.Errorf("%w: unknown recipient %q", ErrInvalidRing, edge.RecipientID)
		}
		if giver.ID == recipient.ID {
			return fmt.Errorf("%w: %s draws themselves", ErrInvalidRing, giver.Name)
		}
		if _, dup := next[giver.ID]; dup {
			return fmt.Errorf("%w: %s gives twice", ErrInvalidRing, giver.Name)
		}
		if received[recipient.ID] {
			return fmt.Errorf("%w: %s receives twice", ErrInvalidRing, recipient.Name)
		}
		if ex.has(giver.Name, recipient.Name) {
			return fmt.Errorf("%w: %s may not draw %s", ErrInvalidRing, giver.Name, recipient.Name)
		}
		next[giver.ID] = recipient.ID
		received[recipient.ID] = true
	}

	if len(participants) == 0 {
		return nil
	}

	// Walk from the first participant; a single cycle visits everyone before returning
	start := participants[0].ID
	current := start
	for steps := 1; ; steps++ {
		current = next[current]
		if current == start {
			if steps != len(participants) {
				return fmt.Errorf("%w: cycle of length %d in a ring of %d", ErrInvalidRing, steps, len(participants))
			}
			return nil
		}
		if steps > len(participants) {
			return fmt.Errorf("%w: ring does not close", ErrInvalidRing)
		}
	}
}
