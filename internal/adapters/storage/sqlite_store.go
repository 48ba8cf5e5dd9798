package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the KVStore interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scanner_state (
			state_key TEXT PRIMARY KEY,
			state_value BLOB NOT NULL,
			updated_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Get retrieves the values present for keys
func (s *SQLiteStore) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	values := make(map[string][]byte, len(keys))
	for _, key := range keys {
		var value []byte
		err := s.db.QueryRowContext(ctx, `
			SELECT state_value FROM scanner_state WHERE state_key = ?
		`, key).Scan(&value)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query state %s: %w", key, err)
		}
		values[key] = value
	}
	return values, nil
}

// Set stores every value in one transaction
func (s *SQLiteStore) Set(ctx context.Context, values map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range values {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO scanner_state (state_key, state_value, updated_at)
			VALUES (?, ?, ?)
		`, key, value, now)
		if err != nil {
			return fmt.Errorf("failed to store state %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}

// Stop closes the database connection
func (s *SQLiteStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
