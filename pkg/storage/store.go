// Package storage is a small durable key-value store for client state. Each
// key lives in its own file named after a hash of the key; the file holds a
// JSON envelope with the original key, creation time, optional TTL, and the
// value bytes. Writes go through a temp file and rename so a crash never
// leaves a torn entry behind.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const entrySuffix = ".entry"

// envelope is the JSON structure persisted for each entry.
type envelope struct {
	Key     string `json:"key"`
	Created int64  `json:"created"` // UnixNano
	TTLNS   int64  `json:"ttl_ns"`  // 0 = no TTL
	Value   []byte `json:"value"`
}

// Store is a directory of entries. Files are created 0600 inside a 0700
// directory because the session token lives here.
type Store struct {
	dir string
	now func() time.Time

	mu sync.Mutex
}

// Open creates dir if needed and returns a Store rooted at it.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("storage: empty directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create directory %s: %w", dir, err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string { return s.dir }

// Get returns the raw bytes for key. Missing, unreadable, or expired entries
// report false; expired entries are removed.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.read(hashKey(key))
	if err != nil || env.Key != key {
		return nil, false
	}
	if s.expired(env) {
		_ = os.Remove(s.path(hashKey(key)))
		return nil, false
	}
	return env.Value, true
}

// GetString returns the value for key as a string.
func (s *Store) GetString(key string) (string, bool) {
	data, ok := s.Get(key)
	if !ok {
		return "", false
	}
	return string(data), true
}

// Put stores value under key without expiry.
func (s *Store) Put(key string, value []byte) error {
	return s.PutWithTTL(key, value, 0)
}

// PutString stores a string value without expiry.
func (s *Store) PutString(key, value string) error {
	return s.Put(key, []byte(value))
}

// PutWithTTL stores value under key. A ttl of 0 never expires.
func (s *Store) PutWithTTL(key string, value []byte, ttl time.Duration) error {
	data, err := json.Marshal(envelope{
		Key:     key,
		Created: s.now().UnixNano(),
		TTLNS:   int64(ttl),
		Value:   value,
	})
	if err != nil {
		return fmt.Errorf("storage: marshal %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := atomicWrite(s.path(hashKey(key)), data, s.dir); err != nil {
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(hashKey(key))); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %q: %w", key, err)
	}
	return nil
}

// Has reports whether key exists and is not expired.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Keys returns every live key, in no particular order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, entrySuffix) {
			continue
		}
		env, err := s.read(strings.TrimSuffix(name, entrySuffix))
		if err != nil || s.expired(env) {
			continue
		}
		keys = append(keys, env.Key)
	}
	return keys
}

// Clear removes every entry and any leftover temp files.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("storage: clear: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, entrySuffix) || strings.HasPrefix(name, ".tmp-") {
			_ = os.Remove(filepath.Join(s.dir, name))
		}
	}
	return nil
}

func (s *Store) path(hash string) string {
	return filepath.Join(s.dir, hash+entrySuffix)
}

func (s *Store) read(hash string) (envelope, error) {
	var env envelope
	data, err := os.ReadFile(s.path(hash))
	if err != nil {
		return env, err
	}
	err = json.Unmarshal(data, &env)
	return env, err
}

func (s *Store) expired(env envelope) bool {
	if env.TTLNS <= 0 {
		return false
	}
	return s.now().Sub(time.Unix(0, env.Created)) > time.Duration(env.TTLNS)
}

// atomicWrite writes data to path via a temporary file and rename.
func atomicWrite(path string, data []byte, tmpDir string) error {
	tmp, err := os.CreateTemp(tmpDir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	success = true
	return nil
}
