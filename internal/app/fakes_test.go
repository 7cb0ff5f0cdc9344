package app_test

import (
	"context"
	"errors"
	"sync"

	"trip_planner/internal/domain"
	"trip_planner/internal/storage"
)

// ---- fakes ----

type fakeRec struct {
	mu          sync.Mutex
	attractions []domain.Suggestion
	hotels      []domain.Suggestion
	err         error
	block       chan struct{} // when set, calls wait for it to close
	calls       int
}

func (f *fakeRec) FetchSuggestions(ctx context.Context, kind domain.SuggestionKind, rc domain.RecommendationContext) ([]domain.Suggestion, error) {
	f.mu.Lock()
	f.calls++
	block, err := f.block, f.err
	out := f.attractions
	if kind == domain.KindHotel {
		out = f.hotels
	}
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return []domain.Suggestion{}, ctx.Err()
		}
	}
	if err != nil {
		return []domain.Suggestion{}, err
	}
	return append([]domain.Suggestion(nil), out...), nil
}

type fakeGen struct {
	pts []domain.LocationPoint
	err error
	got domain.GenerationInput
}

func (f *fakeGen) Generate(ctx context.Context, in domain.GenerationInput) ([]domain.LocationPoint, error) {
	f.got = in
	return f.pts, f.err
}

type fakeUI struct {
	answer bool
	text   string
	textOK bool
	asked  []string
	// whileAsking runs once, during the next Confirm, to change state under the user.
	whileAsking func()
}

func (f *fakeUI) Confirm(ctx context.Context, message string) (bool, error) {
	f.asked = append(f.asked, message)
	if fn := f.whileAsking; fn != nil {
		f.whileAsking = nil
		fn()
	}
	return f.answer, nil
}

func (f *fakeUI) PromptText(ctx context.Context, message, def string) (string, bool, error) {
	f.asked = append(f.asked, message)
	return f.text, f.textOK, nil
}

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

func newRepo() (*storage.TripStore, *failingKV) {
	kv := &failingKV{MemoryKV: storage.NewMemoryKV()}
	return storage.NewTripStore(kv), kv
}

func storageOver(kv domain.KVStore) *storage.TripStore { return storage.NewTripStore(kv) }

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
			{ID: "p3", Name: "Tamaudun", Category: domain.CategorySightseeing, Day: 1, Tips: []string{}},
			{ID: "p4", Name: "Airport", Category: domain.CategoryLogistics, Day: 3, Tips: []string{}},
		},
		Progress: 0.25,
	}
}

func ptr[T any](v T) *T { return &v }
