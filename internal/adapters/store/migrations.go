package store

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// expectedSchemaVersion is the latest schema version the application
// expects its SQLite backing to be at after migration.
const expectedSchemaVersion = 2

// migration is one additive schema step. Migrations only ever add tables,
// columns, or indexes; existing records stay readable and ids stay stable.
type migration struct {
	version     int
	description string
	up          func(*sql.Tx) error
}

var sqliteMigrations = []migration{
	{
		version:     1,
		description: "initial items schema",
		up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS items (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					category TEXT NOT NULL,
					confidence REAL NOT NULL,
					timestamp INTEGER NOT NULL,
					image BLOB NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_items_timestamp ON items(timestamp)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		version:     2,
		description: "index items by category",
		up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_items_category ON items(category)`)
			return err
		},
	},
}

// runMigrations brings the database up to expectedSchemaVersion, applying
// each pending migration in its own transaction
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range sqliteMigrations {
		if current.Valid && int64(m.version) <= current.Int64 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.version, err)
		}
		if err := m.up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`, m.version, m.description); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}

		logger.Info("Applied schema migration",
			zap.Int("version", m.version),
			zap.String("description", m.description))
	}

	return nil
}
