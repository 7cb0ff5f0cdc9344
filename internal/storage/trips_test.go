package storage_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"trip_planner/internal/domain"
	"trip_planner/internal/storage"
)

// failingKV wraps MemoryKV and fails every Put when failPut is set.
type failingKV struct {
	*storage.MemoryKV
	failPut bool
}

func (f *failingKV) Put(ctx context.Context, key string, value []byte) error {
	if f.failPut {
		return errors.New("disk full")
	}
	return f.MemoryKV.Put(ctx, key, value)
}

func sampleTrip(id string) domain.Trip {
	return domain.Trip{
		ID: id,
		Metadata: domain.TripMetadata{
			Title: "Okinawa", Destination: "Naha",
			StartDate: "2024-05-01", EndDate: "2024-05-03",
			Pace: domain.PaceNormal,
			Accommodations: []domain.Accommodation{
				{Name: "Hotel Moon", StartDate: "2024-05-01", EndDate: "2024-05-03"},
			},
		},
		Points: []domain.LocationPoint{
			{ID: "p1", Name: "Shurijo", Category: domain.CategorySightseeing, Day: 1, Tips: []string{"go early"}},
			{ID: "p2", Name: "Makishi", Category: domain.CategoryFood, Day: 2, Completed: true, Tips: []string{}},
		},
		Progress: 0.5,
	}
}

func TestTripStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := storage.NewTripStore(storage.NewMemoryKV())

	if got := s.LoadTrips(ctx); got == nil || len(got) != 0 {
		t.Fatalf("absent key should load as empty list, got %#v", got)
	}

	in := []domain.Trip{sampleTrip("a"), sampleTrip("b")}
	if err := s.SaveTrips(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out := s.LoadTrips(ctx)
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Fatalf("order not preserved: %+v", out)
	}
	if out[0].Points[0].Tips[0] != "go early" || !out[0].Points[1].Completed || out[0].Progress != 0.5 {
		t.Fatalf("fields not preserved: %+v", out[0])
	}
	if out[0].Metadata.Accommodations[0].Name != "Hotel Moon" {
		t.Fatalf("accommodations not preserved: %+v", out[0].Metadata)
	}
}

func TestTripStore_CorruptValueLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	_ = kv.Put(ctx, storage.KeyTrips, []byte(`{not json`))
	_ = kv.Put(ctx, storage.KeyDraft, []byte(`[1,2,3]`))

	s := storage.NewTripStore(kv)
	if got := s.LoadTrips(ctx); len(got) != 0 {
		t.Fatalf("corrupt trips should load empty, got %+v", got)
	}
	if _, ok := s.LoadDraft(ctx); ok {
		t.Fatalf("corrupt draft should be absent")
	}
}

func TestTripStore_FailedWriteKeepsPreviousValue(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{MemoryKV: storage.NewMemoryKV()}
	s := storage.NewTripStore(kv)

	if err := s.SaveTrips(ctx, []domain.Trip{sampleTrip("old")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	kv.failPut = true
	err := s.SaveTrips(ctx, []domain.Trip{sampleTrip("new")})
	if !errors.Is(err, domain.ErrPersistenceWrite) {
		t.Fatalf("expected ErrPersistenceWrite, got %v", err)
	}
	got := s.LoadTrips(ctx)
	if len(got) != 1 || got[0].ID != "old" {
		t.Fatalf("previous value should be intact, got %+v", got)
	}
}

func TestTripStore_DraftAndCurrent(t *testing.T) {
	ctx := context.Background()
	s := storage.NewTripStore(storage.NewMemoryKV())

	d := domain.Draft{
		Metadata:    domain.TripMetadata{Destination: "Naha", StartDate: "2024-05-01", EndDate: "2024-05-02"},
		Candidates:  []domain.Candidate{{ID: "cand-1", Name: "Shurijo", Category: domain.CategorySightseeing}},
		SelectedIDs: []string{"cand-1"},
	}
	if err := s.SaveDraft(ctx, d); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	got, ok := s.LoadDraft(ctx)
	if !ok || got.Metadata.Destination != "Naha" || !got.IsSelected("cand-1") {
		t.Fatalf("draft not restored: %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("updated time should be stamped")
	}
	if err := s.ClearDraft(ctx); err != nil {
		t.Fatalf("clear draft: %v", err)
	}
	if _, ok := s.LoadDraft(ctx); ok {
		t.Fatalf("draft should be gone")
	}
	if err := s.ClearDraft(ctx); err != nil {
		t.Fatalf("clearing an absent draft should succeed: %v", err)
	}

	if err := s.SaveCurrent(ctx, sampleTrip("cur")); err != nil {
		t.Fatalf("save current: %v", err)
	}
	cur, ok := s.LoadCurrent(ctx)
	if !ok || cur.ID != "cur" {
		t.Fatalf("current not restored: %+v", cur)
	}
}

func TestTripStore_SnapshotAndClearAll(t *testing.T) {
	ctx := context.Background()
	s := storage.NewTripStore(storage.NewMemoryKV())
	_ = s.SaveTrips(ctx, []domain.Trip{sampleTrip("a")})
	_ = s.SaveCurrent(ctx, sampleTrip("a"))

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, ok := snap[storage.KeyTrips]; !ok {
		t.Fatalf("snapshot missing %s: %v", storage.KeyTrips, snap)
	}
	if !strings.Contains(snap[storage.KeyCurrent], `"id":"a"`) {
		t.Fatalf("raw value not returned: %s", snap[storage.KeyCurrent])
	}

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	snap, _ = s.Snapshot(ctx)
	if len(snap) != 0 {
		t.Fatalf("expected empty store, got %v", snap)
	}
}

func TestTripStore_ExportImport(t *testing.T) {
	ctx := context.Background()
	src := storage.NewTripStore(storage.NewMemoryKV())
	_ = src.SaveTrips(ctx, []domain.Trip{sampleTrip("a"), sampleTrip("b")})

	var buf bytes.Buffer
	if err := src.Export(ctx, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(buf.String(), `"version": "2.0"`) {
		t.Fatalf("export should be versioned: %s", buf.String())
	}

	dst := storage.NewTripStore(storage.NewMemoryKV())
	_ = dst.SaveTrips(ctx, []domain.Trip{sampleTrip("stale")})
	got, err := dst.Import(ctx, &buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" {
		t.Fatalf("import should replace the list: %+v", got)
	}
	if len(dst.LoadTrips(ctx)) != 2 {
		t.Fatalf("imported list not persisted")
	}
}

func TestTripStore_ImportSingleTrip(t *testing.T) {
	ctx := context.Background()
	s := storage.NewTripStore(storage.NewMemoryKV())
	_ = s.SaveTrips(ctx, []domain.Trip{sampleTrip("x"), sampleTrip("keep")})

	doc := `{"version":"2.0","trip":{"id":"x","metadata":{"title":"New"}},
		"points":[{"id":"p1","name":"A","category":"food","day":1,"isCompleted":true}],
		"exportedAt":"2024-05-01T00:00:00Z"}`
	got, err := s.Import(ctx, strings.NewReader(doc))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != 2 || got[0].Metadata.Title != "New" || got[1].ID != "keep" {
		t.Fatalf("single trip should be prepended replacing same id: %+v", got)
	}
	if got[0].Progress != 1 {
		t.Fatalf("progress should be recomputed, got %v", got[0].Progress)
	}

	if _, err := s.Import(ctx, strings.NewReader(`{"version":"2.0"}`)); !errors.Is(err, storage.ErrInvalidImport) {
		t.Fatalf("expected ErrInvalidImport, got %v", err)
	}
}

func TestKVCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := storage.NewKVCache(storage.NewMemoryKV())

	if err := c.Set(ctx, "k", []string{"a"}, 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got []string
	hit, err := c.Get(ctx, "k", &got)
	if err != nil || !hit || len(got) != 1 {
		t.Fatalf("expected hit, got %v %v %v", hit, err, got)
	}

	time.Sleep(1100 * time.Millisecond)
	hit, err = c.Get(ctx, "k", &got)
	if err != nil || hit {
		t.Fatalf("expected expiry miss, got hit=%v err=%v", hit, err)
	}

	_ = c.Set(ctx, "forever", 1, 0)
	if hit, _ := c.Get(ctx, "forever", new(int)); !hit {
		t.Fatalf("ttl 0 should not expire")
	}
	if err := c.Del(ctx, "forever"); err != nil {
		t.Fatalf("del: %v", err)
	}
}
