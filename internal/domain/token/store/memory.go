package store

import (
	"context"
	"fmt"
	"sync"
)

type memoryStore struct {
	mutex sync.RWMutex
	codes map[string]string
}

// NewMemory builds an in-memory authorization table seeded from config.
func NewMemory(cfg Config) Store {
	codes := make(map[string]string, len(cfg.Seed))
	for code, username := range cfg.Seed {
		codes[code] = username
	}
	return &memoryStore{codes: codes}
}

func (s *memoryStore) Lookup(_ context.Context, code string) (string, error) {
	s.mutex.RLock()
	username, ok := s.codes[code]
	s.mutex.RUnlock()
	if !ok {
		return "", ErrCodeNotFound
	}
	return username, nil
}

func (s *memoryStore) Put(_ context.Context, code, username string) error {
	if code == "" {
		return fmt.Errorf("code required")
	}
	if username == "" {
		return fmt.Errorf("username required")
	}
	s.mutex.Lock()
	s.codes[code] = username
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Remove(_ context.Context, code string) error {
	s.mutex.Lock()
	delete(s.codes, code)
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) List(_ context.Context) (map[string]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make(map[string]string, len(s.codes))
	for code, username := range s.codes {
		out[code] = username
	}
	return out, nil
}

func (s *memoryStore) Stats(_ context.Context) (map[string]any, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return map[string]any{
		"type":  "memory",
		"total": len(s.codes),
	}, nil
}

func (s *memoryStore) Close(context.Context) error {
	return nil
}
