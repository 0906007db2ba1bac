package storage

import (
	"context"
	"testing"
)

func TestMigrationsAreIdempotent(t *testing.T) {
	db, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("first open: %v", err)
	}

	manager := NewMigrationManager(db)
	manager.AddMigration(initialSchema{})
	if err := manager.RunMigrations(); err != nil {
		t.Fatalf("re-running migrations should be a no-op: %v", err)
	}
}

func TestNoteRepositoryAppendAndList(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	repo := NewNoteRepository(db)
	ctx := context.Background()

	if err := repo.Append(ctx, "john", "buy milk"); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := repo.Append(ctx, "john", "call home"); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := repo.Append(ctx, "ayse", "unrelated"); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	notes, err := repo.ListByUser(ctx, "john", 10)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes for john, got %d", len(notes))
	}
	for _, n := range notes {
		if n.Username != "john" {
			t.Errorf("note attributed to wrong user: %+v", n)
		}
	}
}

func TestAuthEventRepositoryRecord(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	repo := NewAuthEventRepository(db)
	ctx := context.Background()

	err = repo.Record(ctx, "attempt-1", "token.accepted", "john", map[string]any{
		"code": "98765",
	})
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if err := repo.Record(ctx, "attempt-1", "session.unlocked", "john", nil); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	events, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, e := range events {
		if e.AttemptID != "attempt-1" {
			t.Errorf("unexpected attempt id: %+v", e)
		}
	}
}
