package recommend

import (
	"context"
	"errors"
	"fmt"

	"trip_planner/internal/domain"
)

var ErrEmptyPlan = errors.New("generated plan has no points")

// PlanGenerator asks the text generator for a day-by-day plan.
type PlanGenerator struct {
	gen domain.TextGenerator
}

func NewPlanGenerator(gen domain.TextGenerator) *PlanGenerator {
	return &PlanGenerator{gen: gen}
}

func (p *PlanGenerator) Generate(ctx context.Context, in domain.GenerationInput) ([]domain.LocationPoint, error) {
	if p.gen == nil {
		return nil, errNoGenerator
	}
	text, err := p.gen.Generate(ctx, planPrompt(in))
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	items, err := ExtractObjects(text)
	if err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	points := mapPoints(items)
	if len(points) == 0 {
		return nil, ErrEmptyPlan
	}
	return points, nil
}
