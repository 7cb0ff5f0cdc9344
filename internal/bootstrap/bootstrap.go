// Package bootstrap builds the adapters the commands share from a Config.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/gemini"
	"trip_planner/internal/adapters/recommend"
	redisad "trip_planner/internal/adapters/redis"
	"trip_planner/internal/app"
	"trip_planner/internal/domain"
	"trip_planner/internal/shared"
	"trip_planner/internal/storage"
	mysqlrepo "trip_planner/internal/storage/mysql"
	"trip_planner/internal/storage/sqlite"
)

// Deps is everything a command needs to run the planner.
type Deps struct {
	KV      domain.KVStore
	Store   *storage.TripStore
	Rec     *recommend.Adapter
	Planner domain.PlanGenerator

	closers []func() error
}

func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

// Open connects the configured store and cache and builds the recommender.
// A missing API key is not an error: suggestions become unavailable and plans
// are built locally.
func Open(ctx context.Context, cfg shared.Config) (*Deps, error) {
	d := &Deps{}
	kv, err := d.openStore(ctx, cfg)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.KV = kv
	d.Store = storage.NewTripStore(kv)

	cache, err := d.openCache(ctx, cfg)
	if err != nil {
		d.Close()
		return nil, err
	}

	var gen domain.TextGenerator
	if client, err := gemini.New(cfg.GeminiBase, cfg.GeminiKey, cfg.GeminiModel, cfg.GeminiRPS); err != nil {
		log.Warn().Err(err).Msg("text generator disabled")
	} else {
		gen = client
	}

	d.Rec = recommend.NewAdapter(gen, cache, cfg.SuggestCacheTTL)
	d.Planner = app.LocalPlanner{}
	if gen != nil {
		d.Planner = app.WithFallback(recommend.NewPlanGenerator(gen), app.LocalPlanner{})
	}
	return d, nil
}

func (d *Deps) openStore(ctx context.Context, cfg shared.Config) (domain.KVStore, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; nothing will be persisted")
		return storage.NewMemoryKV(), nil

	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("sql.Open: %w", err)
		}
		d.closers = append(d.closers, db.Close)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return nil, fmt.Errorf("mysql ping: %w", err)
		}
		repo := mysqlrepo.New(db)
		if err := repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("mysql migrate: %w", err)
		}
		log.Info().Msg("mysql store ready")
		return repo, nil

	case "redis":
		c := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		d.closers = append(d.closers, c.Close)
		if err := c.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis store ready")
		return redisad.NewStore(c), nil

	case "", "sqlite":
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, s.Close)
		log.Info().Str("path", s.Path()).Msg("sqlite store ready")
		return s, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func (d *Deps) openCache(ctx context.Context, cfg shared.Config) (domain.Cache, error) {
	switch cfg.CacheDriver {
	case "none":
		return nil, nil
	case "redis":
		c := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		d.closers = append(d.closers, c.Close)
		if err := c.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return redisad.NewCache(c), nil
	case "", "store":
		return storage.NewKVCache(d.KV), nil
	}
	return nil, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
}
