package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/mikey/binsight/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the ItemStore interface, for
// deployments where scan history is shared between devices
type MySQLStore struct {
	db      *sql.DB
	logger  *zap.Logger
	writeMu sync.Mutex
}

// NewMySQLStore connects to the given DSN and ensures the items schema exists
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(16) NOT NULL,
			confidence DOUBLE NOT NULL,
			timestamp BIGINT NOT NULL,
			image MEDIUMBLOB NOT NULL,
			INDEX idx_items_timestamp (timestamp),
			INDEX idx_items_category (category)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create items table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Create persists a new item with a fresh unique id
func (s *MySQLStore) Create(ctx context.Context, name string, category core.Category, confidence float64, image []byte, timestamp time.Time) (*core.Item, error) {
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
func (s *MySQLStore) List(ctx context.Context, limit int) ([]*core.Item, error) {
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
func (s *MySQLStore) Delete(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return core.NewStoreError("delete", err)
	}
	return nil
}

// WipeAll removes every item
func (s *MySQLStore) WipeAll(ctx context.Context) error {
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
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
