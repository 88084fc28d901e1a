package assignment

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/secretsanta/internal/common/metrics"
	"github.com/KirkDiggler/secretsanta/internal/models"
	"github.com/KirkDiggler/secretsanta/internal/shuffle"
)

// generator implements the Generator interface by rejection sampling:
// shuffle, pair each position with the next one (wrapping around) and
// keep the first ring that breaks no exclusion.
type generator struct {
	maxAttempts int
	shuffler    shuffle.Shuffler
}

// New creates a new generator
func New(cfg *Config) (*generator, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Shuffler == nil {
		return nil, ErrNilShuffler
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if maxAttempts < 0 {
		return nil, ErrInvalidMaxAttempts
	}

	return &generator{
		maxAttempts: maxAttempts,
		shuffler:    cfg.Shuffler,
	}, nil
}

// Generate returns a single-cycle assignment honoring the exclusion relation
func (g *generator) Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrInvalidRing)
	}

	if err := checkUnique(input.Participants); err != nil {
		return nil, err
	}

	// Two people would have to draw each other, one person would draw themselves
	if len(input.Participants) < MinParticipants {
		metrics.GenerationResults.WithLabelValues("infeasible").Inc()
		return nil, fmt.Errorf("%w: need at least %d participants, got %d",
			ErrInfeasible, MinParticipants, len(input.Participants))
	}

	forbidden := newExclusions(input.Forbidden)

	ring := make([]models.Participant, len(input.Participants))
	copy(ring, input.Participants)

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		g.shuffler.Shuffle(len(ring), func(i, j int) {
			ring[i], ring[j] = ring[j], ring[i]
		})

		if edges, ok := pairRing(ring, forbidden); ok {
			metrics.GenerationAttempts.Observe(float64(attempt))
			metrics.GenerationResults.WithLabelValues("ok").Inc()
			return &GenerateOutput{
				Edges:    edges,
				Attempts: attempt,
			}, nil
		}
	}

	metrics.GenerationAttempts.Observe(float64(g.maxAttempts))
	metrics.GenerationResults.WithLabelValues("infeasible").Inc()
	return nil, fmt.Errorf("%w after %d attempts", ErrInfeasible, g.maxAttempts)
}

// pairRing links every element to its successor, the last one to the first
func pairRing(ring []models.Participant, forbidden exclusions) ([]models.AssignmentEdge, bool) {
	edges := make([]models.AssignmentEdge, 0, len(ring))
	for i, giver := range ring {
		recipient := ring[(i+1)%len(ring)]
		if giver.ID == recipient.ID {
			return nil, false
		}
		if forbidden.has(giver.Name, recipient.Name) {
			return nil, false
		}
		edges = append(edges, models.AssignmentEdge{
			GiverID:     giver.ID,
			RecipientID: recipient.ID,
		})
	}
	return edges, true
}

func checkUnique(participants []models.Participant) error {
	ids := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, dup := ids[p.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateParticipant, p.ID)
		}
		ids[p.ID] = struct{}{}
	}
	return nil
}
