package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/logger"

	"github.com/KirkDiggler/secretsanta/internal/common/metrics"
)

// service implements the Service interface
type service struct {
	generator TextGenerator
	timeout   time.Duration
	language  string
}

// NewService creates a new messaging service
func NewService(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	language := cfg.Language
	if language == "" {
		language = DefaultLanguage
	}

	return &service{
		generator: cfg.Generator,
		timeout:   timeout,
		language:  language,
	}, nil
}

// GetRevealMessage returns the festive wish shown next to a revealed recipient
func (s *service) GetRevealMessage(ctx context.Context, input *GetRevealMessageInput) (*GetRevealMessageOutput, error) {
	name := ""
	if input != nil {
		name = strings.TrimSpace(input.RecipientName)
	}

	message, err := s.generate(ctx, name)
	if err != nil {
		logger.Warningf("Using fallback reveal message for %q: %v", name, err)
		metrics.Decorations.WithLabelValues("fallback").Inc()
		return &GetRevealMessageOutput{
			Message:  FallbackMessage(name),
			Fallback: true,
		}, nil
	}

	metrics.Decorations.WithLabelValues("generated").Inc()
	return &GetRevealMessageOutput{Message: message}, nil
}

func (s *service) generate(ctx context.Context, name string) (string, error) {
	if s.generator == nil {
		return "", ErrNoGenerator
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.generator.Generate(ctx, Prompt(name, s.language))
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// FallbackMessage is the fixed wish used whenever nothing better is available
func FallbackMessage(name string) string {
	return fmt.Sprintf("Merry Christmas and lots of presents to %s!", name)
}

// Prompt asks for a short rhyming wish for one person
func Prompt(name, language string) string {
	return fmt.Sprintf("Write a very short (at most two lines), warm, rhyming Christmas wish in %s "+
		"addressed to this person: %s. Make it cute and festive.", language, name)
}
