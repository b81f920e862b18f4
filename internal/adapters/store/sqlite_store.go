package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/binsight/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the ItemStore interface.
// Mutations are funneled through a single write mutex on top of a
// single-connection pool, so interleaved create/delete/wipe calls never
// race on the database handle.
type SQLiteStore struct {
	db      *sql.DB
	logger  *zap.Logger
	writeMu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at dbPath and migrates it
// to the expected schema version
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Create persists a new item with a fresh unique id. The insert runs in a
// transaction: either the full record becomes durable or nothing is visible.
func (s *SQLiteStore) Create(ctx context.Context, name string, category core.Category, confidence float64, image []byte, timestamp time.Time) (*core.Item, error) {
	if err := validateItemFields(name, category, confidence); err != nil {
		return nil, core.NewStoreError("create", err)
	}

	item := &core.Item{
		ID:         uuid.NewString(),
		Name:       name,
		Category:   category,
		Confidence: confidence,
		Timestamp:  timestamp,
		Image:      append([]byte(nil), image...),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, core.NewStoreError("create", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO items (id, name, category, confidence, timestamp, image)
		VALUES (?, ?, ?, ?, ?, ?)
	`, item.ID, item.Name, string(item.Category), item.Confidence, item.Timestamp.UnixNano(), item.Image)
	if err != nil {
		tx.Rollback()
		return nil, core.NewStoreError("create", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, core.NewStoreError("create", err)
	}

	return item, nil
}

// List returns items ordered by timestamp descending; limit <= 0 returns all
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*core.Item, error) {
	query := `
		SELECT id, name, category, confidence, timestamp, image
		FROM items
		ORDER BY timestamp DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.NewStoreError("list", err)
	}
	defer rows.Close()

	var items []*core.Item
	for rows.Next() {
		var item core.Item
		var category string
		var nanos int64
		if err := rows.Scan(&item.ID, &item.Name, &category, &item.Confidence, &nanos, &item.Image); err != nil {
			return nil, core.NewStoreError("list", err)
		}
		item.Category = core.Category(category)
		item.Timestamp = time.Unix(0, nanos)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStoreError("list", err)
	}
	return items, nil
}

// Delete removes the item with the given id; deleting an absent id is a
// silent success
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return core.NewStoreError("delete", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		s.logger.Debug("Delete of absent item", zap.String("id", id))
	}
	return nil
}

// WipeAll removes every item in one transaction
func (s *SQLiteStore) WipeAll(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM items`)
	if err != nil {
		return core.NewStoreError("wipe", err)
	}
	if affected, err := result.RowsAffected(); err == nil {
		s.logger.Debug("Wiped all items", zap.Int64("count", affected))
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
