package uuid

import "github.com/google/uuid"

//go:generate mockgen -package=mocks -destination=mocks/mock_uuid.go github.com/KirkDiggler/secretsanta/internal/common/uuid Generator

// Generator hands out participant IDs
type Generator interface {
	NewID() string
}

// DefaultGenerator issues random (version 4) UUIDs
type DefaultGenerator struct{}

func New() *DefaultGenerator {
	return &DefaultGenerator{}
}

// NewID returns a new random UUID string
func (g *DefaultGenerator) NewID() string {
	return uuid.NewString()
}
