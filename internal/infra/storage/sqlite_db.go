package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite initializes the local SQLite database and creates the necessary
// schemas for persisting round records, the economy event log, and final
// standings.
func InitSQLite(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			game_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			record TEXT NOT NULL,
			PRIMARY KEY (game_id, round)
		);`,
		`CREATE TABLE IF NOT EXISTS economy_events (
			game_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			round INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			target_id TEXT NOT NULL DEFAULT '',
			amount INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (game_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS standings (
			game_id TEXT NOT NULL,
			rank INTEGER NOT NULL,
			participant_id TEXT NOT NULL,
			survived BOOLEAN NOT NULL,
			elimination_round INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL,
			token_bank INTEGER NOT NULL,
			reputation INTEGER NOT NULL,
			PRIMARY KEY (game_id, participant_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_round ON economy_events(game_id, round);`,
		`CREATE INDEX IF NOT EXISTS idx_events_actor ON economy_events(game_id, actor_id);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
