package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spec-kit/ticket-metrics/internal/config"
	"github.com/spec-kit/ticket-metrics/internal/repository"
)

// OpenSQLite opens (creating if needed) the embedded database and its schema.
func OpenSQLite(ctx context.Context, cfg config.SQLiteConfig, logger *zap.Logger) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
	}
	// One connection; sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := repository.InitSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("opened sqlite store", zap.String("path", cfg.Path))
	return db, nil
}
