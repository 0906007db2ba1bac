package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedis constructs a redis-backed authorization table. Bindings never
// expire; the code table is small and long-lived.
func NewRedis(cfg Config) (Store, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "token:code:"
	}
	s := &redisStore{client: client, prefix: prefix}

	ctx := context.Background()
	for code, username := range cfg.Seed {
		if err := client.SetNX(ctx, s.key(code), username, 0).Err(); err != nil {
			return nil, fmt.Errorf("seeding code table: %w", err)
		}
	}
	return s, nil
}

func (s *redisStore) key(code string) string {
	return s.prefix + code
}

func (s *redisStore) Lookup(ctx context.Context, code string) (string, error) {
	username, err := s.client.Get(ctx, s.key(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	return username, nil
}

func (s *redisStore) Put(ctx context.Context, code, username string) error {
	if code == "" {
		return fmt.Errorf("code required")
	}
	if username == "" {
		return fmt.Errorf("username required")
	}
	return s.client.Set(ctx, s.key(code), username, 0).Err()
}

func (s *redisStore) Remove(ctx context.Context, code string) error {
	return s.client.Del(ctx, s.key(code)).Err()
}

func (s *redisStore) List(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	var cursor uint64
	pattern := s.prefix + "*"
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			username, err := s.client.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return nil, err
			}
			out[strings.TrimPrefix(key, s.prefix)] = username
		}
		if nextCursor == 0 {
			break
		}
		cursor = nextCursor
	}
	return out, nil
}

func (s *redisStore) Stats(ctx context.Context) (map[string]any, error) {
	codes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"type":  "redis",
		"total": len(codes),
	}, nil
}

func (s *redisStore) Close(context.Context) error {
	return s.client.Close()
}
