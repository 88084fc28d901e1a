package messaging

import "time"

// DefaultTimeout bounds a text generation call when the config leaves it unset
const DefaultTimeout = 8 * time.Second

// DefaultLanguage is used for prompts when none is configured
const DefaultLanguage = "English"

// Config holds configuration for the messaging service
type Config struct {
	// Generator writes the wishes; the fallback is always used when nil
	Generator TextGenerator

	// Timeout bounds each generation (default 8s)
	Timeout time.Duration

	// Language the wish is written in
	Language string
}

// GetRevealMessageInput contains parameters for a reveal message
type GetRevealMessageInput struct {
	// RecipientName is who the wish is for
	RecipientName string
}

// GetRevealMessageOutput contains the message to show
type GetRevealMessageOutput struct {
	Message string

	// Fallback is true when the fixed message was used
	Fallback bool
}
