package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/phish-scanner/internal/adapters/storage"
	"github.com/mikey/phish-scanner/internal/config"
	"github.com/mikey/phish-scanner/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates key-value stores based on configuration
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

// CreateStore creates the raw key-value store. A nil store with a nil error
// means persistence is switched off.
func (f *StoreFactory) CreateStore() (core.KVStore, error) {
	storageCfg := f.cfg.GetStorage()

	switch storageCfg.Type {
	case "memory", "":
		return storage.NewMemoryStore(f.logger), nil
	case "sqlite":
		sqlitePath := os.ExpandEnv(storageCfg.SQLitePath)
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return storage.NewSQLiteStore(sqlitePath, f.logger)
	case "mysql":
		return storage.NewMySQLStore(storageCfg.MySQLDSN, f.logger)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageCfg.Type)
	}
}

// CreateSafeStore wraps the configured store. Backends that fail to open
// degrade to running without persistence.
func (f *StoreFactory) CreateSafeStore() *core.SafeStore {
	storageCfg := f.cfg.GetStorage()

	store, err := f.CreateStore()
	if err != nil {
		f.logger.Warn("Storage unavailable, scan state will not persist",
			zap.String("type", storageCfg.Type), zap.Error(err))
		store = nil
	}

	return core.NewSafeStore(store, f.logger, storageCfg.Timeout)
}
