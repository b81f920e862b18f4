package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/binsight/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the ItemStore interface,
// used for tests and ephemeral setups
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[string]*core.Item
	logger *zap.Logger
}

// NewMemoryStore creates a new in-memory item store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		items:  make(map[string]*core.Item),
		logger: logger,
	}
}

// Create persists a new item with a fresh unique id
func (s *MemoryStore) Create(_ context.Context, name string, category core.Category, confidence float64, image []byte, timestamp time.Time) (*core.Item, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return item, nil
}

// List returns items ordered by timestamp descending; limit <= 0 returns all
func (s *MemoryStore) List(_ context.Context, limit int) ([]*core.Item, error) {
	s.mu.RLock()
	items := make([]*core.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		return items[i].ID < items[j].ID
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Delete removes the item with the given id; deleting an absent id is a
// silent success
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// WipeAll removes every item
func (s *MemoryStore) WipeAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wiped := len(s.items)
	s.items = make(map[string]*core.Item)
	s.logger.Debug("Wiped all items", zap.Int("count", wiped))
	return nil
}
