package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/secretsanta/internal/models"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// Key layout for an exchange at path P inside the bucket:
	//   P.doc         participants and edges as JSON
	//   P.draws.<id>  present once the participant has drawn
	natsDocToken   = ".doc"
	natsDrawsToken = ".draws."

	// DefaultBucket is used when NATSConfig leaves Bucket empty
	DefaultBucket = "secretsanta"
)

func natsDocKey(path string) string           { return path + natsDocToken }
func natsDrawsPrefix(path string) string      { return path + natsDrawsToken }
func natsDrawKey(path, id string) string      { return natsDrawsPrefix(path) + id }
func natsWatchFilter(path string) string      { return path + ".>" }
func natsDrawsWatchFilter(path string) string { return natsDrawsPrefix(path) + ">" }

// NATSConfig holds configuration for the JetStream KV exchange repository
type NATSConfig struct {
	// JetStream context used to open the bucket
	JetStream jetstream.JetStream

	// Bucket name, DefaultBucket when empty
	Bucket string

	// Storage for a newly created bucket, file storage when zero
	Storage jetstream.StorageType
}

// natsRepository implements the Repository interface on a JetStream key-value bucket
type natsRepository struct {
	kv jetstream.KeyValue
}

// NewNATS opens the bucket, creating it when it does not exist yet
func NewNATS(ctx context.Context, cfg *NATSConfig) (*natsRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.JetStream == nil {
		return nil, errors.New("jetstream cannot be nil")
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}

	kv, err := cfg.JetStream.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 1,
		Storage: cfg.Storage,
	})
	if errors.Is(err, jetstream.ErrBucketExists) {
		kv, err = cfg.JetStream.KeyValue(ctx, bucket)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open KV bucket %s: %w", bucket, err)
	}

	return &natsRepository{
		kv: kv,
	}, nil
}

// GetSnapshot folds the current values under the path into a snapshot
func (r *natsRepository) GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*models.Snapshot, error) {
	if input == nil {
		return nil, ErrEmptyPath
	}
	if err := validatePath(input.Path); err != nil {
		return nil, err
	}

	watcher, err := r.kv.Watch(ctx, natsWatchFilter(input.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to read exchange: %w", err)
	}
	defer func() { _ = watcher.Stop() }()

	state := newNATSState(input.Path)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case entry, ok := <-watcher.Updates():
			if !ok {
				return nil, fmt.Errorf("failed to read exchange: %w", ErrSubscriptionClosed)
			}
			// nil marks the end of the current values
			if entry == nil {
				return state.snapshot(), nil
			}
			if err := state.apply(entry); err != nil {
				return nil, err
			}
		}
	}
}

// WriteFull puts the document, then removes draw keys the new document does not carry.
// Draw keys of participants outside the document are ignored by readers in between.
func (r *natsRepository) WriteFull(ctx context.Context, input *WriteFullInput) error {
	if input == nil {
		return ErrNilExchange
	}
	if err := validateExchange(input.Path, input.Exchange); err != nil {
		return err
	}

	docJSON, err := marshalDocument(input.Exchange)
	if err != nil {
		return err
	}

	if _, err := r.kv.Put(ctx, natsDocKey(input.Path), docJSON); err != nil {
		return fmt.Errorf("failed to write exchange: %w", err)
	}

	return r.replaceDraws(ctx, input.Path, input.Exchange.DrawStatus)
}

// CreateIfAbsent relies on the bucket's create semantics for the document key
func (r *natsRepository) CreateIfAbsent(ctx context.Context, input *CreateIfAbsentInput) error {
	if input == nil {
		return ErrNilExchange
	}
	if err := validateExchange(input.Path, input.Exchange); err != nil {
		return err
	}

	docJSON, err := marshalDocument(input.Exchange)
	if err != nil {
		return err
	}

	if _, err := r.kv.Create(ctx, natsDocKey(input.Path), docJSON); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return ErrDocumentExists
		}
		return fmt.Errorf("failed to create exchange: %w", err)
	}

	return r.replaceDraws(ctx, input.Path, input.Exchange.DrawStatus)
}

// WriteDrawStatus puts the participant's draw key
func (r *natsRepository) WriteDrawStatus(ctx context.Context, input *WriteDrawStatusInput) error {
	if err := validateDrawStatus(input); err != nil {
		return err
	}

	key := natsDrawKey(input.Path, input.ParticipantID)

	if input.IfAbsent {
		if _, err := r.kv.Create(ctx, key, []byte(drawnValue)); err != nil {
			if errors.Is(err, jetstream.ErrKeyExists) {
				return ErrAlreadySet
			}
			return fmt.Errorf("failed to write draw status: %w", err)
		}
		return nil
	}

	if _, err := r.kv.Put(ctx, key, []byte(drawnValue)); err != nil {
		return fmt.Errorf("failed to write draw status: %w", err)
	}
	return nil
}

// Subscribe watches every key under the path and emits a snapshot per change
func (r *natsRepository) Subscribe(ctx context.Context, input *SubscribeInput) (Subscription, error) {
	if input == nil {
		return nil, ErrEmptyPath
	}
	if err := validatePath(input.Path); err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	watcher, err := r.kv.Watch(subCtx, natsWatchFilter(input.Path))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to exchange: %w", err)
	}

	sub := &natsSubscription{
		path:    input.Path,
		watcher: watcher,
		ctx:     subCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		updates: make(chan *models.Snapshot, updatesBuffer),
		errs:    make(chan error, 1),
	}
	go sub.run()

	return sub, nil
}

// replaceDraws deletes existing draw keys and puts the given ones
func (r *natsRepository) replaceDraws(ctx context.Context, path string, status models.DrawStatus) error {
	existing, err := r.drawKeys(ctx, path)
	if err != nil {
		return err
	}

	for _, key := range existing {
		id := strings.TrimPrefix(key, natsDrawsPrefix(path))
		if status[id] {
			continue
		}
		if err := r.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
			return fmt.Errorf("failed to clear draw status: %w", err)
		}
	}

	for id, drawn := range status {
		if !drawn {
			continue
		}
		if _, err := r.kv.Put(ctx, natsDrawKey(path, id), []byte(drawnValue)); err != nil {
			return fmt.Errorf("failed to write draw status: %w", err)
		}
	}

	return nil
}

// drawKeys lists the live draw keys under the path
func (r *natsRepository) drawKeys(ctx context.Context, path string) ([]string, error) {
	watcher, err := r.kv.Watch(ctx, natsDrawsWatchFilter(path), jetstream.IgnoreDeletes(), jetstream.MetaOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list draw status: %w", err)
	}
	defer func() { _ = watcher.Stop() }()

	var keys []string
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case entry, ok := <-watcher.Updates():
			if !ok || entry == nil {
				return keys, nil
			}
			keys = append(keys, entry.Key())
		}
	}
}

// natsState accumulates watched entries into the document they describe
type natsState struct {
	path     string
	doc      *document
	draws    map[string]bool
	revision uint64
}

func newNATSState(path string) *natsState {
	return &natsState{
		path:  path,
		draws: make(map[string]bool),
	}
}

func (s *natsState) apply(entry jetstream.KeyValueEntry) error {
	if entry.Revision() > s.revision {
		s.revision = entry.Revision()
	}

	removed := entry.Operation() != jetstream.KeyValuePut
	key := entry.Key()

	switch {
	case key == natsDocKey(s.path):
		if removed {
			s.doc = nil
			return nil
		}
		var doc document
		if err := json.Unmarshal(entry.Value(), &doc); err != nil {
			return fmt.Errorf("failed to unmarshal exchange: %w", err)
		}
		s.doc = &doc
	case strings.HasPrefix(key, natsDrawsPrefix(s.path)):
		id := strings.TrimPrefix(key, natsDrawsPrefix(s.path))
		if removed {
			delete(s.draws, id)
		} else {
			s.draws[id] = true
		}
	}

	return nil
}

func (s *natsState) snapshot() *models.Snapshot {
	snapshot := &models.Snapshot{Revision: s.revision}
	if s.doc == nil {
		return snapshot
	}

	participants := make([]models.Participant, len(s.doc.Participants))
	copy(participants, s.doc.Participants)
	edges := make([]models.AssignmentEdge, len(s.doc.Edges))
	copy(edges, s.doc.Edges)

	status := make(models.DrawStatus)
	for _, p := range participants {
		if s.draws[p.ID] {
			status[p.ID] = true
		}
	}

	snapshot.Exchange = &models.Exchange{
		Participants: participants,
		Edges:        edges,
		DrawStatus:   status,
	}
	return snapshot
}
