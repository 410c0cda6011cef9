package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-metrics/internal/config"
	"github.com/spec-kit/ticket-metrics/internal/domain"
	"github.com/spec-kit/ticket-metrics/internal/repository"
)

func TestOpenDocumentRepositoryMemory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverMemory}}
	repo, closeFn, err := OpenDocumentRepository(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()

	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpenDocumentRepositorySQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		Store:  config.StoreConfig{Driver: config.StoreDriverSQLite, DocumentTTLMin: 10},
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "docs.db")},
	}
	repo, closeFn, err := OpenDocumentRepository(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()

	doc := &domain.Document{
		SessionID:  "s1",
		FileName:   "tickets.csv",
		Content:    "header\nrow",
		SizeBytes:  10,
		Digest:     repository.Digest("header\nrow"),
		UploadedAt: time.Now().UTC(),
	}
	if err := repo.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != doc.Content || got.Digest != doc.Digest {
		t.Fatalf("unexpected document: %+v", got)
	}
}

func TestOpenDocumentRepositoryUnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "etcd"}}
	if _, _, err := OpenDocumentRepository(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
