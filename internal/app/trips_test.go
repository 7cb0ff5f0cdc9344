package app_test

import (
	"context"
	"errors"
	"testing"

	"trip_planner/internal/app"
	"trip_planner/internal/domain"
)

func newTripService(t *testing.T) (*app.TripService, *app.AppState, *failingKV, *fakeUI) {
	t.Helper()
	repo, kv := newRepo()
	ctx := context.Background()
	if err := repo.SaveTrips(ctx, []domain.Trip{sampleTrip("t1"), sampleTrip("t2")}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.SaveCurrent(ctx, sampleTrip("t1")); err != nil {
		t.Fatalf("seed current: %v", err)
	}
	ui := &fakeUI{answer: true}
	st := app.NewAppState()
	svc := app.NewTripService(st, repo, ui)
	if n := svc.Load(ctx); n != 2 {
		t.Fatalf("loaded %d trips", n)
	}
	return svc, st, kv, ui
}

func TestTripService_GetMissing(t *testing.T) {
	svc, _, _, _ := newTripService(t)
	if _, err := svc.Get("nope"); !errors.Is(err, domain.ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound, got %v", err)
	}
	if _, _, err := svc.AddPoint(context.Background(), "nope", app.NewPoint{Name: "x", Day: 1}); !errors.Is(err, domain.ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound, got %v", err)
	}
}

func TestTripService_EditPersistsAndSyncsCurrent(t *testing.T) {
	svc, st, kv, _ := newTripService(t)
	ctx := context.Background()

	trip, p, err := svc.AddPoint(ctx, "t1", app.NewPoint{Name: "Naminoue", Day: 2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(trip.Points) != 5 || p.ID == "" {
		t.Fatalf("unexpected trip: %+v", trip)
	}

	reloaded := app.NewTripService(app.NewAppState(), storageOver(kv), nil)
	reloaded.Load(ctx)
	got, _ := reloaded.Get("t1")
	if len(got.Points) != 5 {
		t.Fatalf("edit not persisted: %d points", len(got.Points))
	}
	cur, ok := st.Current()
	if !ok || len(cur.Points) != 5 {
		t.Fatalf("current trip not synced: %+v", cur)
	}
	if other, _ := svc.Get("t2"); len(other.Points) != 4 {
		t.Fatalf("other trip changed")
	}
}

func TestTripService_DeclinedConfirmationChangesNothing(t *testing.T) {
	svc, _, _, ui := newTripService(t)
	ctx := context.Background()
	ui.answer = false

	if _, err := svc.DeletePoint(ctx, "t1", "p1"); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("delete point: %v", err)
	}
	if _, err := svc.DeleteAccommodation(ctx, "t1", 0); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("delete accommodation: %v", err)
	}
	if err := svc.DeleteTrip(ctx, "t1"); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("delete trip: %v", err)
	}
	if err := svc.ClearAll(ctx); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("clear all: %v", err)
	}
	if len(ui.asked) != 4 {
		t.Fatalf("expected four prompts, got %v", ui.asked)
	}
	trip, _ := svc.Get("t1")
	if len(svc.List()) != 2 || len(trip.Points) != 4 || len(trip.Metadata.Accommodations) != 1 {
		t.Fatalf("state changed after declined confirmation")
	}
}

func TestTripService_PersistFailureKeepsMemory(t *testing.T) {
	svc, _, kv, _ := newTripService(t)
	kv.failPut = true

	_, err := svc.ToggleComplete(context.Background(), "t1", "p1")
	if !errors.Is(err, domain.ErrPersistenceWrite) {
		t.Fatalf("expected ErrPersistenceWrite, got %v", err)
	}
	trip, _ := svc.Get("t1")
	if trip.Points[0].Completed {
		t.Fatalf("in-memory trip changed despite failed save")
	}
}

func TestTripService_DeleteTripClearsCurrent(t *testing.T) {
	svc, st, _, _ := newTripService(t)
	ctx := context.Background()

	if err := svc.DeleteTrip(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := st.Current(); ok {
		t.Fatalf("current trip should be cleared")
	}
	if list := svc.List(); len(list) != 1 || list[0].ID != "t2" {
		t.Fatalf("list: %+v", list)
	}
}

func TestTripService_Rename(t *testing.T) {
	svc, _, _, ui := newTripService(t)
	ctx := context.Background()

	ui.textOK = false
	if _, err := svc.RenameTrip(ctx, "t2"); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("dismissed prompt: %v", err)
	}

	ui.text, ui.textOK = " Golden Week ", true
	trip, err := svc.RenameTrip(ctx, "t2")
	if err != nil || trip.Metadata.Title != "Golden Week" {
		t.Fatalf("rename: %+v %v", trip.Metadata, err)
	}
}

func TestTripService_ReorderAndDays(t *testing.T) {
	svc, _, _, _ := newTripService(t)
	ctx := context.Background()

	if _, err := svc.ReorderPoints(ctx, "t1", []string{"p1"}); !errors.Is(err, domain.ErrReorderMismatch) {
		t.Fatalf("expected ErrReorderMismatch, got %v", err)
	}
	if _, err := svc.ReorderDay(ctx, "t1", 1, []string{"p3", "p1"}); err != nil {
		t.Fatalf("reorder day: %v", err)
	}
	days, err := svc.Days("t1")
	if err != nil || len(days) != 3 || days[0].Points[0].ID != "p3" {
		t.Fatalf("days: %+v %v", days, err)
	}
}

func TestTripService_ClearAll(t *testing.T) {
	svc, st, _, _ := newTripService(t)
	if err := svc.ClearAll(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(svc.List()) != 0 {
		t.Fatalf("trips remain")
	}
	if _, ok := st.Current(); ok {
		t.Fatalf("current remains")
	}
}

func TestTripService_DeleteAccommodationRechecksAfterConfirm(t *testing.T) {
	svc, _, _, ui := newTripService(t)
	ctx := context.Background()
	for _, n := range []string{"Inn B", "Inn C"} {
		if _, err := svc.AddAccommodation(ctx, "t1", domain.Accommodation{Name: n, StartDate: "2024-05-01", EndDate: "2024-05-02"}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	ui.whileAsking = func() {
		if _, err := svc.DeleteAccommodation(ctx, "t1", 0); err != nil {
			t.Errorf("inner delete: %v", err)
		}
	}
	if _, err := svc.DeleteAccommodation(ctx, "t1", 1); !errors.Is(err, domain.ErrAccommodationNotFound) {
		t.Fatalf("expected ErrAccommodationNotFound, got %v", err)
	}
	trip, _ := svc.Get("t1")
	accs := trip.Metadata.Accommodations
	if len(accs) != 2 || accs[0].Name != "Inn B" || accs[1].Name != "Inn C" {
		t.Fatalf("wrong accommodation removed: %+v", accs)
	}
}
