//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"trip_planner/internal/domain"
	"trip_planner/internal/storage"
	mysqlrepo "trip_planner/internal/storage/mysql"
)

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=planner",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "planner")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRepo_MySQL_KVAndTrips(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()

	repo := mysqlrepo.New(db)
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("migrate should be idempotent: %v", err)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ts := storage.NewTripStore(repo)
	trips := []domain.Trip{
		{ID: "t1", Metadata: domain.TripMetadata{Destination: "Naha", StartDate: "2024-05-01", EndDate: "2024-05-02"}, Points: []domain.LocationPoint{}},
		{ID: "t2", Metadata: domain.TripMetadata{Destination: "Kyoto", StartDate: "2024-06-01", EndDate: "2024-06-02"}, Points: []domain.LocationPoint{}},
	}
	if err := ts.SaveTrips(ctx, trips); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := ts.SaveTrips(ctx, trips[:1]); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got := ts.LoadTrips(ctx)
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("unexpected trips: %+v", got)
	}

	keys, err := repo.Keys(ctx)
	if err != nil || len(keys) != 1 || keys[0] != storage.KeyTrips {
		t.Fatalf("keys = %v, %v", keys, err)
	}
	if err := ts.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if keys, _ := repo.Keys(ctx); len(keys) != 0 {
		t.Fatalf("expected empty table, got %v", keys)
	}
}
