package cli

import (
	"context"
	"fmt"

	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/implementations"
	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/sqlite"
	"github.com/api-sage/bank-ledger/src/internal/config"
	"github.com/api-sage/bank-ledger/src/internal/logger"
)

// Migrate prepares the configured database schema. Memory storage has nothing to migrate.
func Migrate(ctx context.Context, cfg config.Config) error {
	switch cfg.StorageMode {
	case config.StoragePostgres:
		db, err := implementations.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := implementations.RunMigrations(ctx, db, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		return db.Close()
	case config.StorageMemory:
		logger.Info("migrate skipped for memory storage", nil)
	default:
		return fmt.Errorf("unsupported storage mode %q", cfg.StorageMode)
	}
	return nil
}
