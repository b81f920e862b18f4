package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/binsight/internal/adapters/store"
	"github.com/mikey/binsight/internal/config"
	"github.com/mikey/binsight/internal/core"
)

// StoreFactory creates item stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateItemStore creates an item store based on the configuration
func (f *StoreFactory) CreateItemStore() (core.ItemStore, error) {
	storeConfig := f.cfg.GetStore()

	switch storeConfig.Type {
	case "memory":
		return store.NewMemoryStore(f.logger), nil
	case "sqlite":
		return store.NewSQLiteStore(storeConfig.SQLitePath, f.logger)
	case "mysql":
		return store.NewMySQLStore(storeConfig.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeConfig.Type)
	}
}
