package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-metrics/internal/config"
	"github.com/spec-kit/ticket-metrics/internal/repository"
)

// OpenDocumentRepository builds the document store selected by STORE_DRIVER.
// The returned close func releases the backing connection and is never nil.
func OpenDocumentRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.DocumentRepository, func(), error) {
	ttl := cfg.Store.DocumentTTL()

	switch cfg.Store.Driver {
	case config.StoreDriverMemory, "":
		logger.Info("using in-memory document store", zap.Duration("ttl", ttl))
		return repository.NewMemoryDocumentRepository(ttl), func() {}, nil

	case config.StoreDriverRedis:
		rdb, err := NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisDocumentRepository(rdb.Client, cfg.Redis.KeyPrefix, ttl), rdb.Close, nil

	case config.StoreDriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return repository.NewPostgresDocumentRepository(pg.Pool, ttl), pg.Close, nil

	case config.StoreDriverSQLite:
		db, err := OpenSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				logger.Warn("close sqlite", zap.Error(err))
			}
		}
		return repository.NewSQLiteDocumentRepository(db, ttl), closeDB, nil
	}

	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}
