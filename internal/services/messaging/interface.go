package messaging

//go:generate mockgen -package=mocks -destination=mocks/mock_messaging.go github.com/KirkDiggler/secretsanta/internal/services/messaging Service,TextGenerator

import "context"

// Service is the interface for the messaging service
type Service interface {
	// GetRevealMessage returns the festive wish shown next to a revealed recipient.
	// It falls back to a fixed message instead of failing.
	GetRevealMessage(ctx context.Context, input *GetRevealMessageInput) (*GetRevealMessageOutput, error)
}

// TextGenerator turns a prompt into text
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
