package cli

import (
	"context"
	"fmt"

	"github.com/google/logger"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/secretsanta/internal/common/uuid"
	"github.com/KirkDiggler/secretsanta/internal/config"
	"github.com/KirkDiggler/secretsanta/internal/repositories/exchange"
	"github.com/KirkDiggler/secretsanta/internal/services/assignment"
	"github.com/KirkDiggler/secretsanta/internal/services/draw"
	"github.com/KirkDiggler/secretsanta/internal/services/messaging"
	"github.com/KirkDiggler/secretsanta/internal/shuffle"
)

// openRepository connects to the configured store. The returned func releases the connection.
func openRepository(ctx context.Context, cfg *config.Config) (exchange.Repository, func(), error) {
	switch cfg.Backend {
	case config.BackendNATS:
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("santa"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
		}

		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, nil, fmt.Errorf("failed to open JetStream: %w", err)
		}

		repo, err := exchange.NewNATS(ctx, &exchange.NATSConfig{
			JetStream: js,
			Bucket:    cfg.NATS.Bucket,
		})
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		return repo, nc.Close, nil

	default:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		repo, err := exchange.NewRedis(&exchange.Config{
			RedisClient: redisClient,
		})
		if err != nil {
			_ = redisClient.Close()
			return nil, nil, err
		}
		return repo, func() {
			if err := redisClient.Close(); err != nil {
				logger.Warningf("Error closing Redis client: %v", err)
			}
		}, nil
	}
}

// newCoordinator wires the generator and the store into a draw coordinator
func newCoordinator(cfg *config.Config, repo exchange.Repository, onWriteError func(string, error)) (draw.Service, error) {
	generator, err := assignment.New(&assignment.Config{
		MaxAttempts: cfg.MaxAttempts,
		Shuffler:    shuffle.New(&shuffle.Config{}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	coordinator, err := draw.New(&draw.Config{
		Repository:   repo,
		Generator:    generator,
		IDGenerator:  uuid.New(),
		Roster:       cfg.Roster,
		Path:         cfg.ExchangePath,
		WriteTimeout: cfg.WriteTimeout,
		StrictInit:   cfg.StrictInit,
		StrictReveal: cfg.StrictReveal,
		OnWriteError: onWriteError,
	})
	if err != nil {
		return nil, err
	}
	return coordinator, nil
}

// newMessaging uses Gemini when an API key is configured, the fixed wish otherwise
func newMessaging(ctx context.Context, cfg *config.Config) (messaging.Service, error) {
	var generator messaging.TextGenerator
	if cfg.Gemini.APIKey != "" {
		gemini, err := messaging.NewGemini(ctx, &messaging.GeminiConfig{
			APIKey: cfg.Gemini.APIKey,
			Model:  cfg.Gemini.Model,
		})
		if err != nil {
			return nil, err
		}
		generator = gemini
	} else {
		logger.Infof("GEMINI_API_KEY not set, reveals use the fixed wish")
	}

	svc, err := messaging.NewService(&messaging.Config{
		Generator: generator,
		Timeout:   cfg.DecorateTimeout,
		Language:  cfg.Language,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
