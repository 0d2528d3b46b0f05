package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps one JSONB document per game in Postgres
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and ensures the games table exists
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is empty")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Slash commands are short; a small pool is plenty
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 45 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	config.ConnConfig.RuntimeParams = map[string]string{
		"application_name":                    "fislacko-bot",
		"timezone":                            "UTC",
		"statement_timeout":                   "30s",
		"idle_in_transaction_session_timeout": "60s",
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	conn.Release()

	store := &PostgresStore{pool: pool}
	if err := store.createGamesTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) createGamesTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS fiasco_games (
			game_id    TEXT PRIMARY KEY,
			data       JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create fiasco_games table: %w", err)
	}
	return nil
}

// Load fetches the document for gameID, returning an empty one if none exists
func (s *PostgresStore) Load(ctx context.Context, gameID string) (Document, error) {
	var doc Document
	err := s.pool.QueryRow(ctx, `SELECT data FROM fiasco_games WHERE game_id = $1`, gameID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return make(Document), nil
		}
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	if doc == nil {
		doc = make(Document)
	}
	return doc, nil
}

// Save replaces the stored document for gameID
func (s *PostgresStore) Save(ctx context.Context, gameID string, doc Document) error {
	query := `
		INSERT INTO fiasco_games (game_id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (game_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	if _, err := s.pool.Exec(ctx, query, gameID, doc); err != nil {
		return fmt.Errorf("failed to save game %s: %w", gameID, err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}
