package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/domain"
)

// TripService edits published trips: it asks before destructive changes, applies the
// Editor, persists the whole list and keeps the current trip in sync.
type TripService struct {
	mu     sync.Mutex // serialises operations; state itself is guarded by st.mu
	st     *AppState
	repo   domain.TripRepository
	ui     domain.Interactor
	editor Editor
}

func NewTripService(st *AppState, repo domain.TripRepository, ui domain.Interactor) *TripService {
	return &TripService{st: st, repo: repo, ui: ui, editor: NewEditor()}
}

// Load reads the saved trips and the current trip into the shared state.
func (s *TripService) Load(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips := s.repo.LoadTrips(ctx)
	cur, ok := s.repo.LoadCurrent(ctx)

	s.st.mu.Lock()
	s.st.trips = trips
	s.st.current = nil
	if ok {
		s.st.current = &cur
	}
	s.st.mu.Unlock()

	log.Info().Int("trips", len(trips)).Bool("current", ok).Msg("trips loaded")
	return len(trips)
}

func (s *TripService) List() []domain.Trip { return s.st.Trips() }

func (s *TripService) Get(id string) (domain.Trip, error) {
	trips := s.st.Trips()
	i := indexOfTrip(trips, id)
	if i < 0 {
		return domain.Trip{}, fmt.Errorf("%w: %s", domain.ErrTripNotFound, id)
	}
	return trips[i], nil
}

func (s *TripService) Days(id string) ([]DayGroup, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.editor.GroupPointsByDay(t), nil
}

// Select makes the trip current and stores it.
func (s *TripService) Select(ctx context.Context, id string) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.Get(id)
	if err != nil {
		return domain.Trip{}, err
	}
	if err := s.repo.SaveCurrent(ctx, t); err != nil {
		return domain.Trip{}, err
	}
	s.st.mu.Lock()
	cur := t.Clone()
	s.st.current = &cur
	s.st.mu.Unlock()
	return t, nil
}

func (s *TripService) AddPoint(ctx context.Context, tripID string, np NewPoint) (domain.Trip, domain.LocationPoint, error) {
	var added domain.LocationPoint
	t, err := s.mutate(ctx, tripID, func(t domain.Trip) (domain.Trip, error) {
		out, p, err := s.editor.AddPoint(t, np)
		added = p
		return out, err
	})
	return t, added, err
}

func (s *TripService) DeletePoint(ctx context.Context, tripID, pointID string) (domain.Trip, error) {
	t, err := s.Get(tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	name := pointID
	if i := indexOfPoint(t.Points, pointID); i >= 0 {
		name = t.Points[i].Name
	}
	if err := confirm(ctx, s.ui, fmt.Sprintf("Delete %s?", name)); err != nil {
		return domain.Trip{}, err
	}
	return s.mutate(ctx, tripID, func(t domain.Trip) (domain.Trip, error) {
		return s.editor.DeletePoint(t, pointID)
	})
}

func (s *TripService) EditPoint(ctx context.Context, tripID, pointID string, u PointUpdate) (domain.Trip, error) {
	return s.mutate(ctx, tripID, func(t domain.Trip) (domain.Trip, error) {
		return s.editor.EditPoint(t, pointID, u)
	})
}

func (s *TripService) ToggleComplete(ctx context.Context, tripID, pointID string) (domain.Trip, error) {
	return s.mutate(ctx, tripID, func(t domain.Trip) (domain.Trip, error) {
		return s.editor.ToggleComplete(t, pointID)
	})
}

func (s *TripService) ReorderPoints(ctx context.Context, tripID string, ids []string) (domain.Trip, error) {
	return s.mutate(ctx, tripID, func(t domain.Trip) (domain.Trip, error) {
		return s.editor.ReorderPoints(t, ids)
	})
}

func (s *TripService) ReorderDay(ctx context.Context, tripID string, day int, ids []string) (domain.Trip, error) {
	return s.mutate(ctx, tripID, func(t domain.Trip) (domain.Trip, error) {
		return s.editor.ReorderDay(t, day, ids)
	})
}

func (s *TripService) AddAccommodation(ctx context.Context, tripID string, a domain.Accommodation) (domain.Trip, error) {
	return s.mutate(ctx, tripID, func(t domain.Trip) (domain.Trip, error) {
		return s.editor.AddAccommodation(t, a)
	})
}

func (s *TripService) DeleteAccommodation(ctx context.Context, tripID string, index int) (domain.Trip, error) {
	t, err := s.Get(tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	accs := t.Metadata.Accommodations
	if index < 0 || index >= len(accs) {
		return domain.Trip{}, fmt.Errorf("%w: index %d", domain.ErrAccommodationNotFound, index)
	}
	target := accs[index]
	if err := confirm(ctx, s.ui, fmt.Sprintf("Remove %s?", target.Name)); err != nil {
		return domain.Trip{}, err
	}
	return s.mutate(ctx, tripID, func(t domain.Trip) (domain.Trip, error) {
		if cur := t.Metadata.Accommodations; index >= len(cur) || cur[index] != target {
			return t, fmt.Errorf("%w: %s is no longer at index %d", domain.ErrAccommodationNotFound, target.Name, index)
		}
		return s.editor.DeleteAccommodation(t, index)
	})
}

// RenameTrip prompts for a new title, offering the current one. A dismissed prompt
// changes nothing.
func (s *TripService) RenameTrip(ctx context.Context, tripID string) (domain.Trip, error) {
	t, err := s.Get(tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if s.ui == nil {
		return domain.Trip{}, domain.ErrNotConfirmed
	}
	title, ok, err := s.ui.PromptText(ctx, "Trip title", t.Metadata.Title)
	if err != nil {
		return domain.Trip{}, err
	}
	title = strings.TrimSpace(title)
	if !ok || title == "" {
		return domain.Trip{}, domain.ErrNotConfirmed
	}
	return s.mutate(ctx, tripID, func(t domain.Trip) (domain.Trip, error) {
		t = t.Clone()
		t.Metadata.Title = title
		return t, nil
	})
}

func (s *TripService) DeleteTrip(ctx context.Context, tripID string) error {
	t, err := s.Get(tripID)
	if err != nil {
		return err
	}
	if err := confirm(ctx, s.ui, fmt.Sprintf("Delete trip %s?", t.Metadata.Title)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	trips := s.st.Trips()
	i := indexOfTrip(trips, tripID)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrTripNotFound, tripID)
	}
	trips = append(trips[:i], trips[i+1:]...)
	if err := s.repo.SaveTrips(ctx, trips); err != nil {
		return err
	}

	s.st.mu.Lock()
	s.st.trips = trips
	wasCurrent := s.st.current != nil && s.st.current.ID == tripID
	if wasCurrent {
		s.st.current = nil
	}
	s.st.mu.Unlock()

	if wasCurrent {
		if err := s.repo.ClearCurrent(ctx); err != nil {
			log.Warn().Err(err).Str("trip_id", tripID).Msg("clear current trip failed")
		}
	}
	log.Info().Str("trip_id", tripID).Msg("trip deleted")
	return nil
}

// ClearAll wipes every stored key after confirmation.
func (s *TripService) ClearAll(ctx context.Context) error {
	if err := confirm(ctx, s.ui, "Delete all saved data?"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.ClearAll(ctx); err != nil {
		return err
	}
	s.st.mu.Lock()
	s.st.trips = []domain.Trip{}
	s.st.current = nil
	s.st.mu.Unlock()
	log.Warn().Msg("all stored data cleared")
	return nil
}

// mutate applies fn to the trip, saves the whole list and refreshes the current trip.
// Nothing in memory changes unless the save succeeds.
func (s *TripService) mutate(ctx context.Context, tripID string, fn func(domain.Trip) (domain.Trip, error)) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips := s.st.Trips()
	i := indexOfTrip(trips, tripID)
	if i < 0 {
		return domain.Trip{}, fmt.Errorf("%w: %s", domain.ErrTripNotFound, tripID)
	}
	updated, err := fn(trips[i])
	if err != nil {
		return domain.Trip{}, err
	}
	trips[i] = updated
	if err := s.repo.SaveTrips(ctx, trips); err != nil {
		return domain.Trip{}, err
	}

	s.st.mu.Lock()
	s.st.trips = cloneTrips(trips)
	isCurrent := s.st.current != nil && s.st.current.ID == tripID
	if isCurrent {
		cur := updated.Clone()
		s.st.current = &cur
	}
	s.st.mu.Unlock()

	if isCurrent {
		if err := s.repo.SaveCurrent(ctx, updated); err != nil {
			log.Warn().Err(err).Str("trip_id", tripID).Msg("sync current trip failed")
		}
	}
	return updated.Clone(), nil
}

func indexOfTrip(trips []domain.Trip, id string) int {
	for i, t := range trips {
		if t.ID == id {
			return i
		}
	}
	return -1
}
