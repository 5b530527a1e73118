package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// JSONStore stores values of type T as JSON documents under a key prefix.
type JSONStore[T any] struct {
	client *Client
	prefix string
}

// NewJSONStore creates a store whose keys are "<prefix>:<key>".
func NewJSONStore[T any](client *Client, prefix string) *JSONStore[T] {
	return &JSONStore[T]{client: client, prefix: prefix}
}

// Key returns the full Redis key for key.
func (s *JSONStore[T]) Key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Load returns the value stored under key, or nil when it is absent.
func (s *JSONStore[T]) Load(ctx context.Context, key string) (*T, error) {
	raw, ok, err := s.client.Get(ctx, s.Key(key))
	if err != nil {
		return nil, fmt.Errorf("redis load %q: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("redis decode %q: %w", key, err)
	}
	return &v, nil
}

// Save stores v under key. A zero ttl means no expiration.
func (s *JSONStore[T]) Save(ctx context.Context, key string, v *T, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis encode %q: %w", key, err)
	}
	if err := s.client.Set(ctx, s.Key(key), data, ttl); err != nil {
		return fmt.Errorf("redis save %q: %w", key, err)
	}
	return nil
}

// Delete removes key and reports whether it existed.
func (s *JSONStore[T]) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.Key(key))
	if err != nil {
		return false, fmt.Errorf("redis delete %q: %w", key, err)
	}
	return n > 0, nil
}
