package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"trip_planner/internal/app"
	"trip_planner/internal/domain"
)

type invalidatingRec struct {
	fakeRec
	invMu       sync.Mutex
	invalidated []string
}

func (r *invalidatingRec) Invalidate(ctx context.Context, kind domain.SuggestionKind, rc domain.RecommendationContext) error {
	r.invMu.Lock()
	defer r.invMu.Unlock()
	r.invalidated = append(r.invalidated, string(kind)+":"+rc.Destination)
	return nil
}

func TestPrefetcher_RunsEveryDestination(t *testing.T) {
	rec := &fakeRec{
		attractions: []domain.Suggestion{{Name: "a"}, {Name: "b"}},
		hotels:      []domain.Suggestion{{Name: "h"}},
	}
	reports, err := app.NewPrefetcher(rec, 2, false).Run(context.Background(), []string{"Naha", " ", "Nago"}, domain.PaceNormal)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(reports) != 4 || rec.calls != 4 {
		t.Fatalf("expected 4 requests, got %d reports, %d calls", len(reports), rec.calls)
	}
	if reports[0].Destination != "Naha" || reports[0].Kind != domain.KindAttraction || reports[0].Count != 2 {
		t.Fatalf("report 0: %+v", reports[0])
	}
	if reports[3].Destination != "Nago" || reports[3].Kind != domain.KindHotel || reports[3].Count != 1 {
		t.Fatalf("report 3: %+v", reports[3])
	}
}

func TestPrefetcher_FailuresAreReported(t *testing.T) {
	rec := &fakeRec{err: domain.ErrRecommendationUnavailable}
	reports, err := app.NewPrefetcher(rec, 1, false).Run(context.Background(), []string{"Naha"}, domain.PaceNormal)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, r := range reports {
		if !errors.Is(r.Err, domain.ErrRecommendationUnavailable) {
			t.Fatalf("expected failure in report: %+v", r)
		}
	}
}

func TestPrefetcher_RefreshInvalidates(t *testing.T) {
	rec := &invalidatingRec{}
	if _, err := app.NewPrefetcher(rec, 3, true).Run(context.Background(), []string{"Naha"}, domain.PaceNormal); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rec.invalidated) != 2 {
		t.Fatalf("expected both kinds invalidated, got %v", rec.invalidated)
	}
}
