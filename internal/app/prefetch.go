package app

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"trip_planner/internal/domain"
)

// invalidator is implemented by recommenders that keep a cache.
type invalidator interface {
	Invalidate(ctx context.Context, kind domain.SuggestionKind, rc domain.RecommendationContext) error
}

// Prefetcher warms the suggestion cache for a list of destinations.
type Prefetcher struct {
	rec     domain.Recommender
	workers int
	refresh bool
}

func NewPrefetcher(rec domain.Recommender, workers int, refresh bool) *Prefetcher {
	if workers <= 0 {
		workers = 1
	}
	return &Prefetcher{rec: rec, workers: workers, refresh: refresh}
}

type PrefetchReport struct {
	Destination string
	Kind        domain.SuggestionKind
	Count       int
	Err         error
}

// Run fetches attractions and hotels for every destination with at most workers
// requests in flight. Failures are reported per request, not returned.
func (p *Prefetcher) Run(ctx context.Context, destinations []string, pace domain.Pace) ([]PrefetchReport, error) {
	type job struct {
		rc   domain.RecommendationContext
		kind domain.SuggestionKind
	}
	var jobs []job
	for _, d := range destinations {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		rc := domain.RecommendationContext{Destination: d, Pace: pace}
		jobs = append(jobs, job{rc, domain.KindAttraction}, job{rc, domain.KindHotel})
	}

	reports := make([]PrefetchReport, len(jobs))
	sem := semaphore.NewWeighted(int64(p.workers))
	var wg sync.WaitGroup

	for i, j := range jobs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return reports[:i], err
		}
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			defer sem.Release(1)
			reports[i] = p.fetch(ctx, j.kind, j.rc)
		}(i, j)
	}
	wg.Wait()
	return reports, nil
}

func (p *Prefetcher) fetch(ctx context.Context, kind domain.SuggestionKind, rc domain.RecommendationContext) PrefetchReport {
	r := PrefetchReport{Destination: rc.Destination, Kind: kind}
	if inv, ok := p.rec.(invalidator); ok && p.refresh {
		if err := inv.Invalidate(ctx, kind, rc); err != nil {
			log.Warn().Err(err).Str("destination", rc.Destination).Str("kind", string(kind)).Msg("cache invalidate failed")
		}
	}
	sugg, err := p.rec.FetchSuggestions(ctx, kind, rc)
	r.Count, r.Err = len(sugg), err
	if err != nil {
		log.Warn().Err(err).Str("destination", rc.Destination).Str("kind", string(kind)).Msg("prefetch failed")
		return r
	}
	log.Info().Str("destination", rc.Destination).Str("kind", string(kind)).Int("count", r.Count).Msg("prefetch ok")
	return r
}
