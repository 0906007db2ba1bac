package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"voicelock-go/internal/platform/storage"
)

func seedConfig() Config {
	return Config{Seed: map[string]string{"98765": "john"}}
}

func testStoreBehaviour(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	username, err := s.Lookup(ctx, "98765")
	if err != nil {
		t.Fatalf("Lookup seeded code: %v", err)
	}
	if username != "john" {
		t.Fatalf("username = %q, want %q", username, "john")
	}

	if _, err := s.Lookup(ctx, "00000"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("Lookup unknown code: err = %v, want ErrCodeNotFound", err)
	}

	if err := s.Put(ctx, "12345", "mary"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	username, err = s.Lookup(ctx, "12345")
	if err != nil || username != "mary" {
		t.Fatalf("Lookup after Put = %q, %v", username, err)
	}

	// Rebinding a code replaces the user.
	if err := s.Put(ctx, "12345", "ahmet"); err != nil {
		t.Fatalf("Put rebind: %v", err)
	}
	username, _ = s.Lookup(ctx, "12345")
	if username != "ahmet" {
		t.Fatalf("username after rebind = %q, want %q", username, "ahmet")
	}

	codes, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(codes) != 2 || codes["98765"] != "john" || codes["12345"] != "ahmet" {
		t.Fatalf("List = %v", codes)
	}

	if err := s.Remove(ctx, "12345"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Lookup(ctx, "12345"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("Lookup after Remove: err = %v, want ErrCodeNotFound", err)
	}

	if err := s.Put(ctx, "", "nobody"); err == nil {
		t.Fatalf("Put with empty code should fail")
	}
	if err := s.Put(ctx, "55555", ""); err == nil {
		t.Fatalf("Put with empty username should fail")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory(seedConfig())
	defer s.Close(context.Background())
	testStoreBehaviour(t, s)
}

func TestSQLiteStore(t *testing.T) {
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	s, err := NewSQLite(db, seedConfig())
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	testStoreBehaviour(t, s)
}

func TestSQLiteSeedDoesNotOverwrite(t *testing.T) {
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	s, err := NewSQLite(db, seedConfig())
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	ctx := context.Background()
	if err := s.Put(ctx, "98765", "mary"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Reopening with the same seed must keep the admin edit.
	s2, err := NewSQLite(db, seedConfig())
	if err != nil {
		t.Fatalf("NewSQLite again: %v", err)
	}
	username, err := s2.Lookup(ctx, "98765")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if username != "mary" {
		t.Fatalf("username = %q, want %q", username, "mary")
	}
}

func TestRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := seedConfig()
	cfg.Redis = &RedisConfig{Addr: srv.Addr()}
	s, err := NewRedis(cfg)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer s.Close(context.Background())
	testStoreBehaviour(t, s)
}

func TestFactory(t *testing.T) {
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	tests := []struct {
		name    string
		cfg     Config
		deps    Dependencies
		wantErr bool
	}{
		{name: "default is memory", cfg: Config{}},
		{name: "memory", cfg: Config{Driver: DriverMemory}},
		{name: "sqlite", cfg: Config{Driver: DriverSQLite}, deps: Dependencies{SQLiteDB: db}},
		{name: "sqlite without db", cfg: Config{Driver: DriverSQLite}, wantErr: true},
		{name: "unknown driver", cfg: Config{Driver: "etcd"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg, tt.deps)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			s.Close(context.Background())
		})
	}
}
