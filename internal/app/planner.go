package app

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/domain"
)

// LocalPlanner builds a plan without any external service. Selected places are
// spread evenly over the trip days in selection order, never more per day than the
// pace allows except on the last day.
type LocalPlanner struct{}

func (LocalPlanner) Generate(_ context.Context, in domain.GenerationInput) ([]domain.LocationPoint, error) {
	span, err := in.Metadata.Span()
	if err != nil {
		return nil, err
	}
	perDay := int(math.Ceil(float64(len(in.Selected)) / float64(span)))
	if limit := int(domain.Density(in.Pace).MaxPerDay); perDay > limit {
		perDay = limit
	}
	if perDay < 1 {
		perDay = 1
	}

	out := make([]domain.LocationPoint, 0, len(in.Selected))
	for i, c := range in.Selected {
		day := i/perDay + 1
		if day > span {
			day = span
		}
		out = append(out, domain.LocationPoint{
			Name:        c.Name,
			Category:    normalizeCategory(c.Category),
			Coordinates: domain.DefaultCoordinates,
			Day:         day,
			Description: c.Description,
			Tips:        []string{},
		})
	}
	return out, nil
}

type fallbackPlanner struct {
	primary, fallback domain.PlanGenerator
}

// WithFallback returns a generator that uses fallback whenever primary fails.
func WithFallback(primary, fallback domain.PlanGenerator) domain.PlanGenerator {
	return fallbackPlanner{primary: primary, fallback: fallback}
}

func (f fallbackPlanner) Generate(ctx context.Context, in domain.GenerationInput) ([]domain.LocationPoint, error) {
	pts, err := f.primary.Generate(ctx, in)
	if err == nil {
		return pts, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	log.Warn().Err(err).Str("destination", in.Metadata.Destination).Msg("plan generation failed; using local planner")
	return f.fallback.Generate(ctx, in)
}
