// Package store persists the authorization table mapping card codes to
// usernames, behind interchangeable drivers.
package store

import (
	"context"
	"errors"
)

// ErrCodeNotFound is returned by Lookup when no binding exists for a code.
var ErrCodeNotFound = errors.New("token store: code not found")

// Store is the authorization table. Codes are opaque strings exactly as the
// reader emits them.
type Store interface {
	Lookup(ctx context.Context, code string) (string, error)
	Put(ctx context.Context, code, username string) error
	Remove(ctx context.Context, code string) error
	List(ctx context.Context) (map[string]string, error)
	Stats(ctx context.Context) (map[string]any, error)
	Close(ctx context.Context) error
}

// Config selects a driver and its connection parameters. Seed holds the
// static code table from configuration; every driver loads it on startup so
// a fresh deployment is usable without an admin step.
type Config struct {
	Driver string
	Seed   map[string]string
	Redis  *RedisConfig
}

// RedisConfig captures connection options for the redis driver.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}
