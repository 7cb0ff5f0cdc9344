package app

import (
	"strconv"
	"sync"

	"trip_planner/internal/domain"
)

type Step int

const (
	StepIdle Step = iota
	StepDestination
	StepDates
	StepCompanion
	StepPace
	StepAttractions
	StepSelect
	StepReview
	StepAccommodation
	StepGenerating
	StepPreview
)

// Marker is the user-facing step number; accommodation entry sits between review and generation.
func (s Step) Marker() float64 {
	switch {
	case s <= StepReview:
		return float64(s)
	case s == StepAccommodation:
		return 7.5
	default:
		return float64(s) - 1
	}
}

func (s Step) String() string {
	return strconv.FormatFloat(s.Marker(), 'f', -1, 64)
}

// AppState holds everything the wizard and the trip service share. All access goes
// through the methods below or through Wizard and TripService, which hold mu while
// mutating.
type AppState struct {
	mu sync.Mutex

	trips   []domain.Trip
	current *domain.Trip
	draft   domain.Draft
	step    Step
	preview []domain.LocationPoint
	// draftGen changes whenever the draft is replaced, so a fetch can tell whether
	// the draft it was started for still exists.
	draftGen uint64

	attractionFetches int
	hotelFetches      int
}

func NewAppState() *AppState {
	return &AppState{trips: []domain.Trip{}, draft: newDraft()}
}

func newDraft() domain.Draft {
	return domain.Draft{Metadata: domain.TripMetadata{Pace: domain.PaceNormal}}
}

func (s *AppState) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *AppState) Draft() domain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

func (s *AppState) Preview() []domain.LocationPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePoints(s.preview)
}

func (s *AppState) Trips() []domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTrips(s.trips)
}

func (s *AppState) Current() (domain.Trip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.Trip{}, false
	}
	return s.current.Clone(), true
}

func (s *AppState) SearchingAttractions() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attractionFetches > 0
}

func (s *AppState) SearchingHotels() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hotelFetches > 0
}

// acquire marks a fetch as in flight. The returned release clears it exactly once,
// however many times it is called. Callers must not hold mu.
func (s *AppState) acquire(counter *int) (release func()) {
	s.mu.Lock()
	*counter++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			*counter--
			s.mu.Unlock()
		})
	}
}

func cloneTrips(in []domain.Trip) []domain.Trip {
	out := make([]domain.Trip, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

func clonePoints(in []domain.LocationPoint) []domain.LocationPoint {
	if in == nil {
		return nil
	}
	out := make([]domain.LocationPoint, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
