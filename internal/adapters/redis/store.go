package redisad

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"trip_planner/internal/domain"
)

const storePrefix = "planner:kv:"

// Store is a domain.KVStore over redis (STORE_DRIVER=redis). Keys are namespaced so
// Clear never touches cache entries or other applications' data.
type Store struct{ c *redis.Client }

func NewStore(c *redis.Client) *Store { return &Store{c: c} }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.c.Get(ctx, storePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	return v, err
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.c.Set(ctx, storePrefix+key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.c.Del(ctx, storePrefix+key).Err()
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	full, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(full))
	for _, k := range full {
		out = append(out, strings.TrimPrefix(k, storePrefix))
	}
	return out, nil
}

func (s *Store) Clear(ctx context.Context) error {
	full, err := s.scan(ctx)
	if err != nil || len(full) == 0 {
		return err
	}
	return s.c.Del(ctx, full...).Err()
}

func (s *Store) scan(ctx context.Context) ([]string, error) {
	var (
		out    []string
		cursor uint64
	)
	for {
		keys, next, err := s.c.Scan(ctx, cursor, storePrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		out = append(out, keys...)
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}
