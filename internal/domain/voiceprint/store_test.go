package voiceprint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"voicelock-go/internal/platform/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(Config{Dir: t.TempDir()}, logging.Nop())
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	return store
}

func TestEnrollAndLookup(t *testing.T) {
	store := newTestStore(t)
	sample := []byte("fake-wav-bytes")

	if !store.IsEmpty() {
		t.Fatal("fresh store should be empty")
	}
	if err := store.Enroll("  John ", sample); err != nil {
		t.Fatalf("Enroll error: %v", err)
	}
	if store.IsEmpty() {
		t.Fatal("store should not be empty after enrollment")
	}

	path, err := store.Lookup("john")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if filepath.Base(path) != "reference_john.wav" {
		t.Fatalf("unexpected reference filename: %s", path)
	}

	data, err := store.ReadSample("JOHN")
	if err != nil {
		t.Fatalf("ReadSample error: %v", err)
	}
	if string(data) != string(sample) {
		t.Fatal("stored sample does not round-trip")
	}
}

func TestEnrollDuplicateRejectedAndUntouched(t *testing.T) {
	store := newTestStore(t)
	first := []byte("first sample")

	if err := store.Enroll("john", first); err != nil {
		t.Fatalf("Enroll error: %v", err)
	}
	err := store.Enroll("John", []byte("second sample"))
	if !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}

	if store.Count() != 1 {
		t.Fatalf("store size changed on duplicate enrollment: %d", store.Count())
	}
	data, err := store.ReadSample("john")
	if err != nil {
		t.Fatalf("ReadSample error: %v", err)
	}
	if string(data) != string(first) {
		t.Fatal("duplicate enrollment must leave the first sample untouched")
	}
}

func TestLookupUnknownUser(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Lookup("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadAllSkipsMalformedFilenames(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	writeFile("reference_john.wav")
	writeFile("reference_ayse.wav")
	writeFile("notes.txt")
	writeFile("backup_john.wav")
	writeFile("reference_.wav")

	store, err := NewStore(Config{Dir: dir}, logging.Nop())
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}

	users := store.Usernames()
	if len(users) != 2 || users[0] != "ayse" || users[1] != "john" {
		t.Fatalf("unexpected loaded users: %v", users)
	}
}
