package migrations

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"newsdeck/internal/core"

	_ "modernc.org/sqlite"
)

func newTestManager(t *testing.T) (*Manager, *core.Database) {
	t.Helper()

	logger := core.NewLoggerWith(slog.New(slog.NewTextHandler(io.Discard, nil)))
	db, err := core.OpenDatabase(":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewManager(db, logger), db
}

func TestMigrateCreatesArticleTable(t *testing.T) {
	manager, db := newTestManager(t)
	ctx := context.Background()

	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO articles (url, title) VALUES (?, ?)`,
		"https://example.com/a", "Test article")
	if err != nil {
		t.Fatalf("Expected articles table to exist, got %v", err)
	}

	var category string
	var isFavorite bool
	err = db.QueryRowContext(ctx,
		`SELECT category, is_favorite FROM articles WHERE url = ?`,
		"https://example.com/a").Scan(&category, &isFavorite)
	if err != nil {
		t.Fatalf("Failed to read inserted row: %v", err)
	}
	if category != "general" || isFavorite {
		t.Errorf("Expected column defaults (general, false), got (%s, %v)", category, isFavorite)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	manager, db := newTestManager(t)
	ctx := context.Background()

	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO articles (url, title) VALUES (?, ?)`,
		"https://example.com/a", "Test article")
	if err != nil {
		t.Fatalf("Failed to insert row: %v", err)
	}

	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to re-run migrations: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected existing data to survive a re-run, got %d rows", count)
	}
}

func TestRollbackDropsArticleTable(t *testing.T) {
	manager, db := newTestManager(t)
	ctx := context.Background()

	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := manager.Rollback(ctx); err != nil {
		t.Fatalf("Failed to rollback: %v", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO articles (url, title) VALUES (?, ?)`,
		"https://example.com/a", "Test article")
	if err == nil {
		t.Fatal("Expected articles table to be gone after rollback")
	}

	if err := manager.Rollback(ctx); err == nil {
		t.Error("Expected rollback with nothing applied to fail")
	}
}
