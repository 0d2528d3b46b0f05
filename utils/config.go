package utils

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds runtime configuration loaded from the environment
type Config struct {
	BotToken          string        `env:"BOT_TOKEN"`
	Port              string        `env:"PORT" envDefault:"8080"`
	StoreBackend      string        `env:"STORE_BACKEND"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	SQLitePath        string        `env:"SQLITE_PATH"`
	CacheTTL          time.Duration `env:"CACHE_TTL" envDefault:"0s"`
	VerificationToken string        `env:"SLACK_VERIFICATION_TOKEN"`
	CommandName       string        `env:"COMMAND_NAME" envDefault:"fiasco"`
}

// LoadConfig reads an optional .env file and then parses the environment
func LoadConfig() (Config, error) {
	// A missing .env is normal in production
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Backend resolves which DocumentStore implementation the config selects
func (c Config) Backend() string {
	switch strings.ToLower(strings.TrimSpace(c.StoreBackend)) {
	case BackendMemory:
		return BackendMemory
	case BackendPostgres:
		return BackendPostgres
	case BackendSQLite:
		return BackendSQLite
	case "":
	default:
		return c.StoreBackend
	}

	if c.DatabaseURL != "" {
		return BackendPostgres
	}
	if c.SQLitePath != "" {
		return BackendSQLite
	}
	return BackendMemory
}

// OpenStore builds the configured DocumentStore, wrapping it in a cache when
// CacheTTL is positive.
func OpenStore(ctx context.Context, cfg Config) (DocumentStore, error) {
	var (
		store DocumentStore
		err   error
	)

	switch backend := cfg.Backend(); backend {
	case BackendMemory:
		store = NewMemoryStore()
	case BackendPostgres:
		store, err = NewPostgresStore(ctx, cfg.DatabaseURL)
	case BackendSQLite:
		store, err = NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheTTL > 0 {
		store = NewCachedStore(store, cfg.CacheTTL, CacheCleanupInterval)
	}
	return store, nil
}
