// Package voiceprint keeps the per-user reference voice samples and the
// fingerprinting used to compare a fresh capture against a stored reference.
package voiceprint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	platformerrors "voicelock-go/internal/platform/errors"
	"voicelock-go/internal/platform/logging"
)

var (
	// ErrAlreadyEnrolled is returned when a reference already exists for the
	// username. Re-enrollment never overwrites.
	ErrAlreadyEnrolled = errors.New("voiceprint: user already enrolled")
	// ErrNotFound is returned when no reference exists for the username.
	ErrNotFound = errors.New("voiceprint: no reference for user")
)

// Normalize maps a spoken or typed name to the canonical store key.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Store is the on-disk voiceprint registry: one reference audio file per
// enrolled user, named prefix + normalized username + ext. Lookups re-derive
// the path from the username; the in-memory index exists for listing and the
// emptiness check.
type Store struct {
	dir    string
	prefix string
	ext    string
	logger *logging.Logger

	mu    sync.RWMutex
	index map[string]string
}

// Config describes the storage layout.
type Config struct {
	Dir    string
	Prefix string
	Ext    string
}

// NewStore creates the reference directory if needed and scans it.
func NewStore(cfg Config, logger *logging.Logger) (*Store, error) {
	if cfg.Dir == "" {
		cfg.Dir = "references"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "reference_"
	}
	if cfg.Ext == "" {
		cfg.Ext = ".wav"
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStore, "voiceprint.init",
			"failed to create reference directory", err)
	}
	s := &Store{
		dir:    cfg.Dir,
		prefix: cfg.Prefix,
		ext:    cfg.Ext,
		logger: logger,
		index:  make(map[string]string),
	}
	if err := s.LoadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

// pathFor derives the reference file path for a normalized username.
func (s *Store) pathFor(username string) string {
	return filepath.Join(s.dir, s.prefix+username+s.ext)
}

// LoadAll rebuilds the index by scanning storage. Files that do not match
// the naming pattern are skipped, never fatal.
func (s *Store) LoadAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStore, "voiceprint.load",
			"failed to scan reference directory", err)
	}

	index := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, s.prefix) || !strings.HasSuffix(name, s.ext) {
			continue
		}
		username := Normalize(strings.TrimSuffix(strings.TrimPrefix(name, s.prefix), s.ext))
		if username == "" {
			continue
		}
		index[username] = filepath.Join(s.dir, name)
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()
	return nil
}

// Enroll persists a reference sample for a new user. The write goes through
// a temp file and a rename so a crash never leaves a half-written reference.
func (s *Store) Enroll(username string, sample []byte) error {
	username = Normalize(username)
	if username == "" {
		return platformerrors.New(platformerrors.KindStore, "voiceprint.enroll", "empty username")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[username]; exists {
		return ErrAlreadyEnrolled
	}
	target := s.pathFor(username)
	if _, err := os.Stat(target); err == nil {
		// File exists but was not indexed; treat as enrolled.
		s.index[username] = target
		return ErrAlreadyEnrolled
	}

	tmp, err := os.CreateTemp(s.dir, "enroll-*")
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStore, "voiceprint.enroll",
			"failed to create temp reference", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(sample); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return platformerrors.Wrap(platformerrors.KindStore, "voiceprint.enroll",
			"failed to write reference sample", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return platformerrors.Wrap(platformerrors.KindStore, "voiceprint.enroll",
			"failed to close reference sample", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return platformerrors.Wrap(platformerrors.KindStore, "voiceprint.enroll",
			"failed to finalize reference sample", err)
	}

	s.index[username] = target
	if s.logger != nil {
		s.logger.InfoTag("STORE", "enrolled reference for user %s", username)
	}
	return nil
}

// Lookup returns the reference file path for the user.
func (s *Store) Lookup(username string) (string, error) {
	username = Normalize(username)
	s.mu.RLock()
	path, ok := s.index[username]
	s.mu.RUnlock()
	if ok {
		return path, nil
	}
	// Re-derive; the file may have appeared since the last scan.
	path = s.pathFor(username)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	s.mu.Lock()
	s.index[username] = path
	s.mu.Unlock()
	return path, nil
}

// ReadSample loads the stored reference audio for the user.
func (s *Store) ReadSample(username string) ([]byte, error) {
	path, err := s.Lookup(username)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStore, "voiceprint.read",
			fmt.Sprintf("failed to read reference for %s", username), err)
	}
	return data, nil
}

// IsEmpty reports whether no user is enrolled. Gates first-run enrollment.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index) == 0
}

// Usernames lists enrolled users in stable order.
func (s *Store) Usernames() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.index))
	for name := range s.index {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Count returns the number of enrolled users.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}
