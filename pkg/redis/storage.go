package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/detectkit/pkg/kvstore"
)

// Storage is a kvstore.Storage backed by Redis. Values never expire.
type Storage struct {
	db     redis.UniversalClient
	prefix string
}

// StorageOption configures Storage.
type StorageOption func(*Storage)

// WithKeyPrefix namespaces every key, e.g. "detectkit:profile-1:".
func WithKeyPrefix(prefix string) StorageOption {
	return func(s *Storage) { s.prefix = prefix }
}

// NewStorage returns a Storage over client.
func NewStorage(client redis.UniversalClient, opts ...StorageOption) *Storage {
	s := &Storage{db: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) key(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", kvstore.ErrEmptyKey
	}
	return s.prefix + key, nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	k, err := s.key(key)
	if err != nil {
		return "", false, err
	}
	v, err := s.db.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, true, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	if err := s.db.Set(ctx, k, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	if err := s.db.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// incrScript increments a counter in one server-side step. Values that are
// not integers restart at zero, like the other kvstore backends.
var incrScript = redis.NewScript(`
local n = tonumber(redis.call("GET", KEYS[1]))
if n == nil or n ~= math.floor(n) then
  n = 0
end
n = n + 1
redis.call("SET", KEYS[1], string.format("%d", n))
return n
`)

// Incr runs incrScript, which is atomic across every client of the server.
func (s *Storage) Incr(ctx context.Context, key string) (int64, error) {
	k, err := s.key(key)
	if err != nil {
		return 0, err
	}
	n, err := incrScript.Run(ctx, s.db, []string{k}).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis incr %q: %w", key, err)
	}
	return n, nil
}
