package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/domain"
)

var errNoGenerator = errors.New("no text generator configured")

// Adapter implements domain.Recommender on top of a text generator, with an
// optional suggestion cache in front of it.
type Adapter struct {
	gen   domain.TextGenerator
	cache domain.Cache
	ttl   time.Duration
}

func NewAdapter(gen domain.TextGenerator, cache domain.Cache, ttl time.Duration) *Adapter {
	return &Adapter{gen: gen, cache: cache, ttl: ttl}
}

// CacheKey is the cache key for one suggestion request.
func CacheKey(kind domain.SuggestionKind, rc domain.RecommendationContext) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return fmt.Sprintf("suggest:%s:%s:%s:%s", kind, norm(rc.Destination), norm(rc.CompanionType),
		domain.ParsePace(string(rc.Pace)))
}

func (a *Adapter) FetchSuggestions(ctx context.Context, kind domain.SuggestionKind, rc domain.RecommendationContext) ([]domain.Suggestion, error) {
	key := CacheKey(kind, rc)
	if a.cache != nil {
		var cached []domain.Suggestion
		hit, err := a.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("key", key).Msg("suggestion cache read failed")
		case hit && len(cached) > 0:
			observability.ObserveSuggestions(string(kind), "cached")
			return cached, nil
		}
	}

	if a.gen == nil {
		return unavailable(kind, errNoGenerator)
	}
	text, err := a.gen.Generate(ctx, suggestionPrompt(kind, rc))
	if err != nil {
		return unavailable(kind, err)
	}
	items, err := ExtractObjects(text)
	if err != nil {
		return unavailable(kind, err)
	}
	out := mapSuggestions(items, kind)
	observability.ObserveSuggestions(string(kind), "ok")

	if a.cache != nil && len(out) > 0 {
		if err := a.cache.Set(ctx, key, out, int(a.ttl.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("suggestion cache write failed")
		}
	}
	return out, nil
}

// Invalidate drops the cached suggestions for one request so the next fetch goes
// to the generator.
func (a *Adapter) Invalidate(ctx context.Context, kind domain.SuggestionKind, rc domain.RecommendationContext) error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Del(ctx, CacheKey(kind, rc))
}

func unavailable(kind domain.SuggestionKind, cause error) ([]domain.Suggestion, error) {
	observability.ObserveSuggestions(string(kind), "unavailable")
	log.Warn().Err(cause).Str("kind", string(kind)).Msg("recommendation unavailable")
	return []domain.Suggestion{}, fmt.Errorf("%w: %w", domain.ErrRecommendationUnavailable, cause)
}
