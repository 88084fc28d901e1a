package draw

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/secretsanta/internal/services/draw Service

import (
	"context"

	"github.com/KirkDiggler/secretsanta/internal/models"
)

// Service coordinates one shared exchange: it creates the document when
// nobody has yet, mirrors it locally and turns reveals into scoped writes.
type Service interface {
	// Start subscribes to the document, initializes it when absent and
	// returns once the exchange is ready
	Start(ctx context.Context) error

	// Board returns the public view of the latest snapshot
	Board() (*models.Board, error)

	// Watch streams boards as they change. Slow readers only see the latest one.
	Watch() (<-chan *models.Board, func())

	// Reveal hands the participant their recipient and records that they drew
	Reveal(ctx context.Context, input *RevealInput) (*RevealOutput, error)

	// FindParticipant resolves a self-declared display name
	FindParticipant(ctx context.Context, input *FindParticipantInput) (*FindParticipantOutput, error)

	// Close stops the subscription and waits for pending writes
	Close() error
}
