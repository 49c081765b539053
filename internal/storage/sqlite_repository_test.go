package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "remindd-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestTimedCRUDAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := parseRFC3339(t, "2026-02-09T12:00:00Z")

	first, err := repo.CreateTimed(ctx, TimedReminder{
		ID:          "rem-1",
		Label:       "call mom",
		TriggerAt:   "20260902-130000-+0000",
		PreNotifyAt: "20260902-125000-+0000",
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("create timed: %v", err)
	}
	second, err := repo.CreateTimed(ctx, TimedReminder{
		ID:        "rem-2",
		Label:     "call mom",
		TriggerAt: "20261002-130000-+0000",
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("create timed: %v", err)
	}
	if second.Seq <= first.Seq {
		t.Fatalf("expected increasing seq, got %d then %d", first.Seq, second.Seq)
	}

	got, err := repo.GetTimed(ctx, "rem-1")
	if err != nil {
		t.Fatalf("get timed: %v", err)
	}
	if got.PreNotifyAt != "20260902-125000-+0000" || got.RepeatCount != 0 || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected timed reminder: %#v", got)
	}

	byLabel, err := repo.ListTimed(ctx, TimedListFilter{Label: "call mom"})
	if err != nil {
		t.Fatalf("list timed: %v", err)
	}
	if len(byLabel) != 2 || byLabel[0].ID != "rem-1" || byLabel[1].ID != "rem-2" {
		t.Fatalf("unexpected list order: %#v", byLabel)
	}
	if byLabel[1].PreNotifyAt != "" {
		t.Fatalf("expected empty pre-notify for NULL column, got %q", byLabel[1].PreNotifyAt)
	}

	byTime, err := repo.ListTimed(ctx, TimedListFilter{TriggerAt: "20261002-130000-+0000"})
	if err != nil {
		t.Fatalf("list by time: %v", err)
	}
	if len(byTime) != 1 || byTime[0].ID != "rem-2" {
		t.Fatalf("unexpected list by time: %#v", byTime)
	}

	if err := repo.DeleteTimed(ctx, "rem-1"); err != nil {
		t.Fatalf("delete timed: %v", err)
	}
	if _, err := repo.GetTimed(ctx, "rem-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if err := repo.DeleteTimed(ctx, "rem-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got: %v", err)
	}
}

func TestReplaceTimedAppendsAtEnd(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := parseRFC3339(t, "2026-02-09T12:00:00Z")

	for _, id := range []string{"a", "b"} {
		if _, err := repo.CreateTimed(ctx, TimedReminder{ID: id, Label: id, TriggerAt: "20260902-130000-+0000", CreatedAt: now}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	next, err := repo.ReplaceTimed(ctx, "a", TimedReminder{
		ID:          "a2",
		Label:       "a",
		TriggerAt:   "20260902-130200-+0000",
		RepeatCount: 1,
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if next.RepeatCount != 1 {
		t.Fatalf("unexpected replacement: %#v", next)
	}

	items, err := repo.ListTimed(ctx, TimedListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != "b" || items[1].ID != "a2" {
		t.Fatalf("unexpected order after replace: %#v", items)
	}

	if _, err := repo.ReplaceTimed(ctx, "missing", TimedReminder{ID: "x", Label: "x", TriggerAt: "t", CreatedAt: now}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing old id, got %v", err)
	}
	if _, err := repo.GetTimed(ctx, "x"); err != ErrNotFound {
		t.Fatalf("expected rolled back insert, got %v", err)
	}
}

func TestDeleteTimedBatchAndClear(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := parseRFC3339(t, "2026-02-09T12:00:00Z")
	for _, id := range []string{"a", "b", "c"} {
		if _, err := repo.CreateTimed(ctx, TimedReminder{ID: id, Label: id, TriggerAt: "20260902-130000-+0000", CreatedAt: now}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	n, err := repo.DeleteTimedBatch(ctx, []string{"a", "c", "zzz"})
	if err != nil {
		t.Fatalf("delete batch: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}

	n, err = repo.ClearTimed(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 cleared, got %d", n)
	}
}

func TestUntimedCRUDAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := parseRFC3339(t, "2026-02-09T12:00:00Z")

	for _, item := range []UntimedReminder{
		{ID: "u1", Label: "buy milk", CreatedAt: now},
		{ID: "u2", Label: "water plants", CreatedAt: now},
		{ID: "u3", Label: "buy milk", CreatedAt: now},
	} {
		if _, err := repo.CreateUntimed(ctx, item); err != nil {
			t.Fatalf("create untimed: %v", err)
		}
	}

	milk, err := repo.ListUntimed(ctx, UntimedListFilter{Label: "buy milk"})
	if err != nil {
		t.Fatalf("list untimed: %v", err)
	}
	if len(milk) != 2 || milk[0].ID != "u1" || milk[1].ID != "u3" {
		t.Fatalf("unexpected untimed list: %#v", milk)
	}

	page, err := repo.ListUntimed(ctx, UntimedListFilter{Offset: 1})
	if err != nil {
		t.Fatalf("list untimed page: %v", err)
	}
	if len(page) != 2 || page[0].ID != "u2" {
		t.Fatalf("unexpected page: %#v", page)
	}

	if err := repo.DeleteUntimed(ctx, "u1"); err != nil {
		t.Fatalf("delete untimed: %v", err)
	}
	if err := repo.DeleteUntimed(ctx, "u1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}

	n, err := repo.ClearUntimed(ctx)
	if err != nil {
		t.Fatalf("clear untimed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 cleared, got %d", n)
	}
}

func TestOpenSQLiteMigrates(t *testing.T) {
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "open.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	items, err := repo.ListTimed(context.Background(), TimedListFilter{})
	if err != nil {
		t.Fatalf("list after open: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty database, got %d rows", len(items))
	}
}
