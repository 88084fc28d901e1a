package exchange

import (
	"errors"

	"github.com/KirkDiggler/secretsanta/internal/models"
)

var (
	// ErrDocumentExists is returned by CreateIfAbsent when a document is already stored
	ErrDocumentExists = errors.New("exchange document already exists")

	// ErrAlreadySet is returned by a conditional draw status write when the key is already true
	ErrAlreadySet = errors.New("draw status already set")

	// ErrEmptyPath is returned when no document path is given
	ErrEmptyPath = errors.New("exchange path cannot be empty")

	// ErrEmptyParticipantID is returned when a draw status write names nobody
	ErrEmptyParticipantID = errors.New("participant ID cannot be empty")

	// ErrNilExchange is returned when a full write carries no document
	ErrNilExchange = errors.New("exchange cannot be nil")
)

func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	return nil
}

func validateExchange(path string, exchange *models.Exchange) error {
	if err := validatePath(path); err != nil {
		return err
	}
	if exchange == nil {
		return ErrNilExchange
	}
	return nil
}

func validateDrawStatus(input *WriteDrawStatusInput) error {
	if input == nil {
		return ErrEmptyPath
	}
	if err := validatePath(input.Path); err != nil {
		return err
	}
	if input.ParticipantID == "" {
		return ErrEmptyParticipantID
	}
	return nil
}

// ErrSubscriptionClosed is returned when the feed ends before the store answered
var ErrSubscriptionClosed = errors.New("subscription closed")
