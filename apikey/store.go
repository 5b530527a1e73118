package apikey

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kbukum/opkit/redis"
)

// ErrEmptyKey is returned when storing an empty key.
var ErrEmptyKey = errors.New("apikey: empty key")

// Key describes an issued API key.
type Key struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Store looks up API keys. Lookup returns nil, nil for an unknown key.
type Store interface {
	Lookup(ctx context.Context, key string) (*Key, error)
	Save(ctx context.Context, key string, k Key) error
	Revoke(ctx context.Context, key string) (bool, error)
}

// DefaultPrefix is the Redis key prefix used by RedisStore.
const DefaultPrefix = "apikey"

// RedisStore keeps keys in Redis as "<prefix>:<key>" JSON documents.
type RedisStore struct {
	docs *redis.JSONStore[Key]
}

// NewRedisStore creates a store on client. An empty prefix uses DefaultPrefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisStore{docs: redis.NewJSONStore[Key](client, prefix)}
}

func (s *RedisStore) Lookup(ctx context.Context, key string) (*Key, error) {
	if key == "" {
		return nil, nil
	}
	return s.docs.Load(ctx, key)
}

func (s *RedisStore) Save(ctx context.Context, key string, k Key) error {
	if key == "" {
		return ErrEmptyKey
	}
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now().UTC()
	}
	return s.docs.Save(ctx, key, &k, 0)
}

func (s *RedisStore) Revoke(ctx context.Context, key string) (bool, error) {
	return s.docs.Delete(ctx, key)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[string]Key
}

// NewMemoryStore creates a store preloaded with keys, each named after itself.
func NewMemoryStore(keys ...string) *MemoryStore {
	s := &MemoryStore{keys: make(map[string]Key, len(keys))}
	now := time.Now().UTC()
	for _, k := range keys {
		if k != "" {
			s.keys[k] = Key{Name: k, CreatedAt: now}
		}
	}
	return s
}

func (s *MemoryStore) Lookup(_ context.Context, key string) (*Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[key]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, k Key) error {
	if key == "" {
		return ErrEmptyKey
	}
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.keys[key] = k
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Revoke(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	delete(s.keys, key)
	return ok, nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
