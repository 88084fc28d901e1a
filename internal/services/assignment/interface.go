package assignment

//go:generate mockgen -package=mocks -destination=mocks/mock_generator.go github.com/KirkDiggler/secretsanta/internal/services/assignment Generator

import "context"

// Generator builds drawing rings
type Generator interface {
	// Generate returns a single-cycle assignment honoring the exclusion relation
	Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error)
}
