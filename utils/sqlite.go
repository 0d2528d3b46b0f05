package utils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps one JSON document per game in a local SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is empty")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS fiasco_games (
		game_id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, gameID string) (Document, error) {
	var doc Document
	err := s.db.QueryRowContext(ctx, `SELECT data FROM fiasco_games WHERE game_id = ?`, gameID).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return make(Document), nil
		}
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	return doc, nil
}

func (s *SQLiteStore) Save(ctx context.Context, gameID string, doc Document) error {
	data, err := doc.Value()
	if err != nil {
		return fmt.Errorf("encode game %s: %w", gameID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fiasco_games (game_id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		gameID, string(data.([]byte)), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save game %s: %w", gameID, err)
	}
	return nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
