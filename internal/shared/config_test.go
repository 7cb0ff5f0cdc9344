package shared_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"trip_planner/internal/shared"
)

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planner.yaml")
	yml := `
store_driver: redis
redis_addr: cache:6379
suggest_cache_ttl_seconds: 60
prefetch_destinations: [Naha, Kyoto]
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PLANNER_CONFIG", path)
	t.Setenv("REDIS_ADDR", "override:6380")

	c := shared.Load()
	if c.StoreDriver != "redis" {
		t.Fatalf("store driver from file: %q", c.StoreDriver)
	}
	if c.RedisAddr != "override:6380" {
		t.Fatalf("env should override file: %q", c.RedisAddr)
	}
	if c.SuggestCacheTTL != time.Minute {
		t.Fatalf("ttl = %v", c.SuggestCacheTTL)
	}
	if len(c.PrefetchDestinations) != 2 || c.PrefetchDestinations[1] != "Kyoto" {
		t.Fatalf("destinations = %v", c.PrefetchDestinations)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PLANNER_CONFIG", "")
	t.Setenv("PREFETCH_DESTINATIONS", " Naha, ,Seoul ")
	c := shared.Load()
	if c.StoreDriver != "sqlite" || c.SQLitePath == "" {
		t.Fatalf("unexpected store defaults: %+v", c)
	}
	if len(c.PrefetchDestinations) != 2 || c.PrefetchDestinations[0] != "Naha" {
		t.Fatalf("destinations = %v", c.PrefetchDestinations)
	}
}
