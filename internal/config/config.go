// Package config loads the process configuration from the environment and
// the optional roster file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/KirkDiggler/secretsanta/internal/models"
)

// Backend selects the realtime document store
type Backend string

const (
	BackendRedis Backend = "redis"
	BackendNATS  Backend = "nats"
)

// Config is everything the santa binary needs to run
type Config struct {
	Backend Backend

	Redis RedisConfig
	NATS  NATSConfig

	// ExchangePath names the shared document
	ExchangePath string

	// MaxAttempts bounds the ring search
	MaxAttempts int

	WriteTimeout    time.Duration
	DecorateTimeout time.Duration

	StrictInit   bool
	StrictReveal bool

	ListenAddr string

	Gemini   GeminiConfig
	Language string

	Discord DiscordConfig

	RosterFile string
	Roster     *models.Roster
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type NATSConfig struct {
	URL    string
	Bucket string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

// DiscordConfig enables the Discord bot when Token is set
type DiscordConfig struct {
	Token         string
	ApplicationID string
	GuildID       string
}

// Load reads the environment, after merging in the given .env files (or
// ./.env when it exists), and the roster file it points at
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var errs []error
	cfg := &Config{
		Backend: Backend(getEnv("SANTA_BACKEND", string(BackendRedis))),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0, &errs),
		},
		NATS: NATSConfig{
			URL:    getEnv("NATS_URL", "nats://localhost:4222"),
			Bucket: getEnv("NATS_BUCKET", "secretsanta"),
		},
		ExchangePath:    getEnv("SANTA_EXCHANGE_PATH", "christmas-draw-2024"),
		MaxAttempts:     getInt("SANTA_MAX_ATTEMPTS", 2000, &errs),
		WriteTimeout:    getDuration("SANTA_WRITE_TIMEOUT", 10*time.Second, &errs),
		DecorateTimeout: getDuration("SANTA_DECORATE_TIMEOUT", 8*time.Second, &errs),
		StrictInit:      getBool("SANTA_STRICT_INIT", false, &errs),
		StrictReveal:    getBool("SANTA_STRICT_REVEAL", false, &errs),
		ListenAddr:      getEnv("SANTA_LISTEN_ADDR", ":8080"),
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Language:   getEnv("SANTA_LANGUAGE", "English"),
		Discord: DiscordConfig{
			Token:         getEnv("DISCORD_TOKEN", ""),
			ApplicationID: getEnv("DISCORD_APP_ID", ""),
			GuildID:       getEnv("DISCORD_GUILD_ID", ""),
		},
		RosterFile: getEnv("SANTA_ROSTER_FILE", ""),
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.RosterFile == "" {
		cfg.Roster = models.DefaultRoster()
		return cfg, nil
	}

	roster, err := LoadRoster(cfg.RosterFile)
	if err != nil {
		return nil, err
	}
	cfg.Roster = roster

	return cfg, nil
}

// Validate checks the values that have no sensible fallback
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRedis, BackendNATS:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}

	if c.ExchangePath == "" {
		return ErrMissingExchangePath
	}

	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: SANTA_MAX_ATTEMPTS must be positive, got %d", ErrInvalidValue, c.MaxAttempts)
	}

	if c.WriteTimeout <= 0 || c.DecorateTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidValue)
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value))
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value))
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value))
		return defaultValue
	}
	return d
}
