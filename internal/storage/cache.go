package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/domain"
)

const cachePrefix = "cache:"

// KVCache implements domain.Cache on top of the local KV store, so the suggestion
// cache survives restarts without a redis server.
type KVCache struct {
	kv  domain.KVStore
	now func() time.Time
}

func NewKVCache(kv domain.KVStore) *KVCache {
	return &KVCache{kv: kv, now: time.Now}
}

type cacheEntry struct {
	ExpiresAt time.Time       `json:"expiresAt"`
	Value     json.RawMessage `json:"value"`
}

func (c *KVCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.kv.Get(ctx, cachePrefix+key)
	if errors.Is(err, domain.ErrNotFound) {
		observability.ObserveCache("kv", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var e cacheEntry
	if err := json.Unmarshal(b, &e); err != nil || (!e.ExpiresAt.IsZero() && c.now().After(e.ExpiresAt)) {
		observability.ObserveCache("kv", "miss")
		_ = c.kv.Delete(ctx, cachePrefix+key)
		return false, nil
	}
	observability.ObserveCache("kv", "hit")
	return true, json.Unmarshal(e.Value, dst)
}

// Set stores v; ttlSec <= 0 means no expiry.
func (c *KVCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e := cacheEntry{Value: raw}
	if ttlSec > 0 {
		e.ExpiresAt = c.now().Add(time.Duration(ttlSec) * time.Second).UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	observability.ObserveCache("kv", "set")
	return c.kv.Put(ctx, cachePrefix+key, b)
}

func (c *KVCache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("kv", "del")
	err := c.kv.Delete(ctx, cachePrefix+key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
