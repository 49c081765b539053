package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func openRawDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func schemaVersion(t *testing.T, db *sql.DB) int {
	t.Helper()
	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	return v
}

func TestMigrateDownAndUpAgain(t *testing.T) {
	db := openRawDB(t, "migrate-roundtrip.db")

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if v := schemaVersion(t, db); v != 1 {
		t.Fatalf("expected version 1 after up, got %d", v)
	}
	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}
	if v := schemaVersion(t, db); v != 0 {
		t.Fatalf("expected version 0 after down, got %d", v)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	created := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	if _, err := repo.CreateTimed(context.Background(), TimedReminder{
		ID:        "rt-1",
		Label:     "water plants",
		TriggerAt: "20260902-120000-+0000",
		CreatedAt: created,
	}); err != nil {
		t.Fatalf("insert after re-migrating failed: %v", err)
	}
	got, err := repo.GetTimed(context.Background(), "rt-1")
	if err != nil {
		t.Fatalf("get after re-migrating failed: %v", err)
	}
	if got.Label != "water plants" {
		t.Fatalf("unexpected label: %q", got.Label)
	}
}

func TestMigrateUpSkipsAppliedVersions(t *testing.T) {
	db := openRawDB(t, "idempotent.db")
	for i := 0; i < 2; i++ {
		if err := MigrateUp(db); err != nil {
			t.Fatalf("migrate up #%d failed: %v", i+1, err)
		}
	}
	if v := schemaVersion(t, db); v != 1 {
		t.Fatalf("expected version 1, got %d", v)
	}
}

func TestMigrateDownOnEmptyDatabase(t *testing.T) {
	db := openRawDB(t, "empty.db")
	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down on empty db: %v", err)
	}
	if v := schemaVersion(t, db); v != 0 {
		t.Fatalf("expected version 0, got %d", v)
	}
}

func TestLoadMigrationsPairsScripts(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	if len(migrations) == 0 || migrations[0].version != 1 {
		t.Fatalf("unexpected migrations: %+v", migrations)
	}
	for _, m := range migrations {
		if m.up == "" || m.down == "" {
			t.Fatalf("migration %s is missing a script", m.name)
		}
	}
}
