package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

// GetTyped decodes a stored JSON value into T. It reports false when the
// key is missing, expired, or does not decode as T.
func GetTyped[T any](s *Store, key string) (T, bool) {
	var v T
	data, ok := s.Get(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// PutTyped encodes value as JSON and stores it without expiry.
func PutTyped[T any](s *Store, key string, value T) error {
	return PutTypedWithTTL(s, key, value, 0)
}

// PutTypedWithTTL encodes value as JSON and stores it with ttl.
func PutTypedWithTTL[T any](s *Store, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage: marshal typed value for %q: %w", key, err)
	}
	return s.PutWithTTL(key, data, ttl)
}
