package exchange

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/secretsanta/internal/repositories/exchange Repository,Subscription

import (
	"context"

	"github.com/KirkDiggler/secretsanta/internal/models"
)

// Repository is the realtime document store holding the shared exchange document
type Repository interface {
	// Subscribe streams full snapshots of the document, starting with the current one
	Subscribe(ctx context.Context, input *SubscribeInput) (Subscription, error)

	// GetSnapshot reads the current document once
	GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*models.Snapshot, error)

	// WriteFull overwrites the whole document
	WriteFull(ctx context.Context, input *WriteFullInput) error

	// CreateIfAbsent writes the whole document only when none exists yet
	CreateIfAbsent(ctx context.Context, input *CreateIfAbsentInput) error

	// WriteDrawStatus marks exactly one participant as drawn
	WriteDrawStatus(ctx context.Context, input *WriteDrawStatusInput) error
}

// Subscription is a live feed of document snapshots.
// Revisions delivered on Updates strictly increase.
type Subscription interface {
	// Updates delivers snapshots until the subscription is closed
	Updates() <-chan *models.Snapshot

	// Errors reports failures to read the document; the feed keeps running
	Errors() <-chan error

	// Close stops the feed and closes Updates
	Close() error
}
