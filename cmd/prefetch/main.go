package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/app"
	"trip_planner/internal/bootstrap"
	"trip_planner/internal/domain"
	"trip_planner/internal/shared"
)

func main() {
	refresh := flag.Bool("refresh", false, "drop cached suggestions before fetching")
	pace := flag.String("pace", "normal", "pace used in the cache key (relaxed|normal|tight)")
	flag.Parse()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	destinations := cfg.PrefetchDestinations
	if flag.NArg() > 0 {
		destinations = flag.Args()
	}
	if len(destinations) == 0 {
		log.Fatal().Msg("no destinations: pass them as arguments or set PREFETCH_DESTINATIONS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("setup failed")
	}
	defer deps.Close()

	log.Info().
		Int("destinations", len(destinations)).
		Int("workers", cfg.PrefetchWorkers).
		Bool("refresh", *refresh).
		Msg("prefetch starting")

	reports, err := app.NewPrefetcher(deps.Rec, cfg.PrefetchWorkers, *refresh).Run(ctx, destinations, domain.ParsePace(*pace))
	if err != nil {
		log.Error().Err(err).Msg("prefetch interrupted")
	}
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}
	log.Info().Int("requests", len(reports)).Int("failed", failed).Msg("prefetch completed")
	if failed > 0 || err != nil {
		deps.Close()
		os.Exit(1)
	}
}
