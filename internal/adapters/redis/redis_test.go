package redisad_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "trip_planner/internal/adapters/redis"
	"trip_planner/internal/domain"
	"trip_planner/internal/storage"
)

func newClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetExpire(t *testing.T) {
	c, mr := newClient(t)
	cache := redisad.NewCache(c)
	ctx := context.Background()

	want := []domain.Suggestion{{Name: "Hotel A", Description: "nice"}}
	if err := cache.Set(ctx, "suggest:hotel:naha::normal", want, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got []domain.Suggestion
	hit, err := cache.Get(ctx, "suggest:hotel:naha::normal", &got)
	if err != nil || !hit || len(got) != 1 || got[0].Name != "Hotel A" {
		t.Fatalf("expected hit, got %v %v %+v", hit, err, got)
	}

	mr.FastForward(61 * time.Second)
	hit, err = cache.Get(ctx, "suggest:hotel:naha::normal", &got)
	if err != nil || hit {
		t.Fatalf("expected miss after ttl, got %v %v", hit, err)
	}
}

func TestCache_Del(t *testing.T) {
	c, _ := newClient(t)
	cache := redisad.NewCache(c)
	ctx := context.Background()

	_ = cache.Set(ctx, "k", 1, 0)
	if err := cache.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if hit, _ := cache.Get(ctx, "k", new(int)); hit {
		t.Fatalf("expected miss after del")
	}
}

func TestStore_KV(t *testing.T) {
	c, mr := newClient(t)
	s := redisad.NewStore(c)
	ctx := context.Background()

	// foreign key outside the namespace must survive Clear
	_ = mr.Set("other", "x")

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_ = s.Put(ctx, "a", []byte(`1`))
	_ = s.Put(ctx, "b", []byte(`2`))

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("keys = %v", keys)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if keys, _ := s.Keys(ctx); len(keys) != 0 {
		t.Fatalf("expected empty, got %v", keys)
	}
	if !mr.Exists("other") {
		t.Fatalf("clear removed a key outside the namespace")
	}
}

func TestStore_BacksTripStore(t *testing.T) {
	c, _ := newClient(t)
	ts := storage.NewTripStore(redisad.NewStore(c))
	ctx := context.Background()

	trip := domain.Trip{ID: "t1", Metadata: domain.TripMetadata{Destination: "Naha"}, Points: []domain.LocationPoint{}}
	if err := ts.SaveTrips(ctx, []domain.Trip{trip}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := ts.LoadTrips(ctx); len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("unexpected trips: %+v", got)
	}
}

func TestCache_UndecodableEntryIsAMiss(t *testing.T) {
	c, mr := newClient(t)
	cache := redisad.NewCache(c)
	ctx := context.Background()

	_ = mr.Set("planner:cache:k", "not json")
	var got []domain.Suggestion
	hit, err := cache.Get(ctx, "k", &got)
	if err != nil || hit {
		t.Fatalf("expected miss, got %v %v", hit, err)
	}
	if mr.Exists("planner:cache:k") {
		t.Fatalf("undecodable entry should be dropped")
	}
}

func TestCache_DoesNotLeakIntoStore(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()
	s := redisad.NewStore(c)

	_ = redisad.NewCache(c).Set(ctx, "suggest:hotel:naha::normal", []string{"x"}, 0)
	if keys, _ := s.Keys(ctx); len(keys) != 0 {
		t.Fatalf("store sees cache keys: %v", keys)
	}
}
