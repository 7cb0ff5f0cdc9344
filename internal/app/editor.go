package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"trip_planner/internal/domain"
)

// Editor edits published trips. It never persists and never mutates its input:
// every operation works on a deep copy and returns it with progress recomputed.
type Editor struct {
	newID func() string
}

func NewEditor() Editor {
	return Editor{newID: uuid.NewString}
}

type NewPoint struct {
	Name        string              `json:"name"`
	Category    domain.Category     `json:"category"`
	Day         int                 `json:"day"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
	Phone       string              `json:"phone,omitempty"`
	Mapcode     string              `json:"mapcode,omitempty"`
	Description string              `json:"description,omitempty"`
	Tips        []string            `json:"tips,omitempty"`
}

// PointUpdate is a partial LocationPoint; nil fields are left unchanged.
type PointUpdate struct {
	Name        *string             `json:"name,omitempty"`
	Category    *domain.Category    `json:"category,omitempty"`
	Day         *int                `json:"day,omitempty"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
	Completed   *bool               `json:"isCompleted,omitempty"`
	Phone       *string             `json:"phone,omitempty"`
	Mapcode     *string             `json:"mapcode,omitempty"`
	Description *string             `json:"description,omitempty"`
	Tips        *[]string           `json:"tips,omitempty"`
}

type DayGroup struct {
	Day    int                    `json:"day"`
	Points []domain.LocationPoint `json:"points"`
}

func (e Editor) id() string {
	if e.newID == nil {
		return uuid.NewString()
	}
	return e.newID()
}

func (e Editor) AddPoint(trip domain.Trip, np NewPoint) (domain.Trip, domain.LocationPoint, error) {
	name := strings.TrimSpace(np.Name)
	if name == "" {
		return trip, domain.LocationPoint{}, fmt.Errorf("point name is required")
	}
	if err := checkDay(trip, np.Day); err != nil {
		return trip, domain.LocationPoint{}, err
	}

	p := domain.LocationPoint{
		ID:          e.id(),
		Name:        name,
		Category:    normalizeCategory(np.Category),
		Coordinates: domain.DefaultCoordinates,
		Day:         np.Day,
		Phone:       np.Phone,
		Mapcode:     np.Mapcode,
		Description: np.Description,
		Tips:        append([]string{}, np.Tips...),
	}
	if np.Coordinates != nil {
		p.Coordinates = *np.Coordinates
	}

	out := trip.Clone()
	out.Points = append(out.Points, p)
	out.RecomputeProgress()
	return out, p.Clone(), nil
}

// DeletePoint removes the point. A missing id is reported, not ignored.
func (e Editor) DeletePoint(trip domain.Trip, id string) (domain.Trip, error) {
	idx := indexOfPoint(trip.Points, id)
	if idx < 0 {
		return trip, fmt.Errorf("%w: %s", domain.ErrPointNotFound, id)
	}
	out := trip.Clone()
	out.Points = append(out.Points[:idx], out.Points[idx+1:]...)
	out.RecomputeProgress()
	return out, nil
}

func (e Editor) EditPoint(trip domain.Trip, id string, u PointUpdate) (domain.Trip, error) {
	idx := indexOfPoint(trip.Points, id)
	if idx < 0 {
		return trip, fmt.Errorf("%w: %s", domain.ErrPointNotFound, id)
	}
	if u.Day != nil {
		if err := checkDay(trip, *u.Day); err != nil {
			return trip, err
		}
	}

	out := trip.Clone()
	p := &out.Points[idx]
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Category != nil {
		p.Category = normalizeCategory(*u.Category)
	}
	if u.Day != nil {
		p.Day = *u.Day
	}
	if u.Coordinates != nil {
		p.Coordinates = *u.Coordinates
	}
	if u.Completed != nil {
		p.Completed = *u.Completed
		// only completion feeds progress; other edits keep the stored value
		out.RecomputeProgress()
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Mapcode != nil {
		p.Mapcode = *u.Mapcode
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Tips != nil {
		p.Tips = append([]string{}, (*u.Tips)...)
	}
	return out, nil
}

func (e Editor) ToggleComplete(trip domain.Trip, id string) (domain.Trip, error) {
	idx := indexOfPoint(trip.Points, id)
	if idx < 0 {
		return trip, fmt.Errorf("%w: %s", domain.ErrPointNotFound, id)
	}
	done := !trip.Points[idx].Completed
	return e.EditPoint(trip, id, PointUpdate{Completed: &done})
}

func (e Editor) AddAccommodation(trip domain.Trip, a domain.Accommodation) (domain.Trip, error) {
	a.Name = strings.TrimSpace(a.Name)
	if err := domain.ValidateAccommodation(a); err != nil {
		return trip, err
	}
	out := trip.Clone()
	out.Metadata.Accommodations = append(out.Metadata.Accommodations, a)
	return out, nil
}

func (e Editor) DeleteAccommodation(trip domain.Trip, index int) (domain.Trip, error) {
	accs := trip.Metadata.Accommodations
	if index < 0 || index >= len(accs) {
		return trip, fmt.Errorf("%w: index %d", domain.ErrAccommodationNotFound, index)
	}
	out := trip.Clone()
	out.Metadata.Accommodations = append(out.Metadata.Accommodations[:index], out.Metadata.Accommodations[index+1:]...)
	return out, nil
}

// GroupPointsByDay partitions points by day, keeping stored order inside each group.
// Every day of the trip gets a group, even when empty.
func (e Editor) GroupPointsByDay(trip domain.Trip) []DayGroup {
	byDay := map[int][]domain.LocationPoint{}
	for _, p := range trip.Points {
		byDay[p.Day] = append(byDay[p.Day], p.Clone())
	}
	if span, err := trip.Metadata.Span(); err == nil {
		for d := 1; d <= span; d++ {
			if _, ok := byDay[d]; !ok {
				byDay[d] = []domain.LocationPoint{}
			}
		}
	}

	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	out := make([]DayGroup, 0, len(days))
	for _, d := range days {
		out = append(out, DayGroup{Day: d, Points: byDay[d]})
	}
	return out
}

// ReorderPoints replaces the point order. ids must be a permutation of the current ids.
func (e Editor) ReorderPoints(trip domain.Trip, ids []string) (domain.Trip, error) {
	if len(ids) != len(trip.Points) {
		return trip, fmt.Errorf("%w: got %d ids for %d points", domain.ErrReorderMismatch, len(ids), len(trip.Points))
	}
	byID := make(map[string]domain.LocationPoint, len(trip.Points))
	for _, p := range trip.Points {
		byID[p.ID] = p
	}
	out := trip.Clone()
	out.Points = make([]domain.LocationPoint, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return trip, fmt.Errorf("%w: unknown id %s", domain.ErrReorderMismatch, id)
		}
		if _, dup := seen[id]; dup {
			return trip, fmt.Errorf("%w: duplicate id %s", domain.ErrReorderMismatch, id)
		}
		seen[id] = struct{}{}
		out.Points = append(out.Points, p.Clone())
	}
	return out, nil
}

// ReorderDay reorders the points of one day. Points of other days keep their positions;
// the day's points fill that day's slots in the new order.
func (e Editor) ReorderDay(trip domain.Trip, day int, ids []string) (domain.Trip, error) {
	var slots []int
	for i, p := range trip.Points {
		if p.Day == day {
			slots = append(slots, i)
		}
	}
	if len(ids) != len(slots) {
		return trip, fmt.Errorf("%w: got %d ids for %d points on day %d", domain.ErrReorderMismatch, len(ids), len(slots), day)
	}

	dayPoints := make(map[string]domain.LocationPoint, len(slots))
	for _, i := range slots {
		dayPoints[trip.Points[i].ID] = trip.Points[i]
	}
	out := trip.Clone()
	seen := make(map[string]struct{}, len(ids))
	for n, id := range ids {
		p, ok := dayPoints[id]
		if !ok {
			return trip, fmt.Errorf("%w: %s is not on day %d", domain.ErrReorderMismatch, id, day)
		}
		if _, dup := seen[id]; dup {
			return trip, fmt.Errorf("%w: duplicate id %s", domain.ErrReorderMismatch, id)
		}
		seen[id] = struct{}{}
		out.Points[slots[n]] = p.Clone()
	}
	return out, nil
}

func checkDay(trip domain.Trip, day int) error {
	span, err := trip.Metadata.Span()
	if err != nil {
		return err
	}
	if !domain.IsValidDay(day, span) {
		return fmt.Errorf("%w: day %d not in [1,%d]", domain.ErrInvalidDay, day, span)
	}
	return nil
}

func normalizeCategory(c domain.Category) domain.Category {
	if parsed, ok := domain.ParseCategory(string(c)); ok {
		return parsed
	}
	return domain.CategorySightseeing
}

func indexOfPoint(points []domain.LocationPoint, id string) int {
	for i, p := range points {
		if p.ID == id {
			return i
		}
	}
	return -1
}
