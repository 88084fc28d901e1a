package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/secretsanta/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key layout for an exchange at path P:
	//   exchange:P:doc      participants and edges as JSON
	//   exchange:P:draws    hash of participant ID -> "1"
	//   exchange:P:rev      revision counter, bumped on every write
	//   exchange:P:changes  pub/sub channel announcing writes
	keyPrefix     = "exchange:"
	docSuffix     = ":doc"
	drawsSuffix   = ":draws"
	revSuffix     = ":rev"
	changesSuffix = ":changes"

	drawnValue = "1"

	// Conditional writes retry when a watched key changes underneath them
	maxTxRetries = 5
)

func docKey(path string) string     { return keyPrefix + path + docSuffix }
func drawsKey(path string) string   { return keyPrefix + path + drawsSuffix }
func revKey(path string) string     { return keyPrefix + path + revSuffix }
func changesKey(path string) string { return keyPrefix + path + changesSuffix }

// Config holds configuration for the Redis exchange repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed exchange repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// GetSnapshot reads the document, its draw statuses and revision in one transaction
func (r *redisRepository) GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*models.Snapshot, error) {
	if input == nil {
		return nil, ErrEmptyPath
	}
	if err := validatePath(input.Path); err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	docCmd := pipe.Get(ctx, docKey(input.Path))
	drawsCmd := pipe.HGetAll(ctx, drawsKey(input.Path))
	revCmd := pipe.Get(ctx, revKey(input.Path))

	// A missing key surfaces as redis.Nil from Exec; the individual commands say which
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read exchange: %w", err)
	}

	snapshot := &models.Snapshot{}

	revision, err := revCmd.Uint64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read exchange revision: %w", err)
	}
	snapshot.Revision = revision

	docJSON, err := docCmd.Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return snapshot, nil
		}
		return nil, fmt.Errorf("failed to read exchange document: %w", err)
	}

	var doc document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal exchange: %w", err)
	}

	draws, err := drawsCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read draw status: %w", err)
	}

	status := make(models.DrawStatus, len(draws))
	for id, value := range draws {
		if value == drawnValue {
			status[id] = true
		}
	}

	snapshot.Exchange = &models.Exchange{
		Participants: doc.Participants,
		Edges:        doc.Edges,
		DrawStatus:   status,
	}

	return snapshot, nil
}

// WriteFull overwrites the document and replaces its draw statuses
func (r *redisRepository) WriteFull(ctx context.Context, input *WriteFullInput) error {
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

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		queueFullWrite(ctx, pipe, input.Path, docJSON, input.Exchange.DrawStatus)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write exchange: %w", err)
	}

	return nil
}

// CreateIfAbsent writes the document unless one already exists.
// WATCH on the document key makes a concurrent creator lose with ErrDocumentExists.
func (r *redisRepository) CreateIfAbsent(ctx context.Context, input *CreateIfAbsentInput) error {
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

	key := docKey(input.Path)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return ErrDocumentExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			queueFullWrite(ctx, pipe, input.Path, docJSON, input.Exchange.DrawStatus)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDocumentExists), errors.Is(err, redis.TxFailedErr):
		return ErrDocumentExists
	default:
		return fmt.Errorf("failed to create exchange: %w", err)
	}
}

// WriteDrawStatus sets one field of the draws hash and announces the change
func (r *redisRepository) WriteDrawStatus(ctx context.Context, input *WriteDrawStatusInput) error {
	if err := validateDrawStatus(input); err != nil {
		return err
	}

	if !input.IfAbsent {
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			queueDrawWrite(ctx, pipe, input.Path, input.ParticipantID)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to write draw status: %w", err)
		}
		return nil
	}

	key := drawsKey(input.Path)
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			value, err := tx.HGet(ctx, key, input.ParticipantID).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if value == drawnValue {
				return ErrAlreadySet
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				queueDrawWrite(ctx, pipe, input.Path, input.ParticipantID)
				return nil
			})
			return err
		}, key)

		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrAlreadySet):
			return ErrAlreadySet
		case errors.Is(err, redis.TxFailedErr):
			// Someone else drew in the meantime, check again
			continue
		default:
			return fmt.Errorf("failed to write draw status: %w", err)
		}
	}

	return fmt.Errorf("failed to write draw status: %w", redis.TxFailedErr)
}

// Subscribe listens on the change channel and re-reads the document on every announcement
func (r *redisRepository) Subscribe(ctx context.Context, input *SubscribeInput) (Subscription, error) {
	if input == nil {
		return nil, ErrEmptyPath
	}
	if err := validatePath(input.Path); err != nil {
		return nil, err
	}

	pubsub := r.client.Subscribe(ctx, changesKey(input.Path))

	// Wait for the subscription to be confirmed so no change slips in before the first read
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to exchange: %w", err)
	}

	sub := newRedisSubscription(ctx, r, input.Path, pubsub)
	go sub.run()

	return sub, nil
}

func marshalDocument(exchange *models.Exchange) ([]byte, error) {
	docJSON, err := json.Marshal(&document{
		Participants: exchange.Participants,
		Edges:        exchange.Edges,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal exchange: %w", err)
	}
	return docJSON, nil
}

func queueFullWrite(ctx context.Context, pipe redis.Pipeliner, path string, docJSON []byte, status models.DrawStatus) {
	pipe.Set(ctx, docKey(path), docJSON, 0)
	pipe.Del(ctx, drawsKey(path))

	fields := make([]interface{}, 0, 2*len(status))
	for id, drawn := range status {
		if drawn {
			fields = append(fields, id, drawnValue)
		}
	}
	if len(fields) > 0 {
		pipe.HSet(ctx, drawsKey(path), fields...)
	}

	pipe.Incr(ctx, revKey(path))
	pipe.Publish(ctx, changesKey(path), "full")
}

func queueDrawWrite(ctx context.Context, pipe redis.Pipeliner, path, participantID string) {
	pipe.HSet(ctx, drawsKey(path), participantID, drawnValue)
	pipe.Incr(ctx, revKey(path))
	pipe.Publish(ctx, changesKey(path), participantID)
}
