package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the on-store date format for trips, points and accommodations.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

type Category string

const (
	CategorySightseeing Category = "sightseeing"
	CategoryFood        Category = "food"
	CategoryLogistics   Category = "logistics"
	CategoryStay        Category = "stay"
)

// ParseCategory maps free-form labels (including the ones text generators like to
// invent) onto the four known categories. ok is false when nothing matched.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sightseeing", "visit", "activity", "landmark", "nature":
		return CategorySightseeing, true
	case "food", "dining", "cafe", "restaurant":
		return CategoryFood, true
	case "logistics", "transport", "flight", "move":
		return CategoryLogistics, true
	case "stay", "hotel", "lodging", "accommodation":
		return CategoryStay, true
	}
	return "", false
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultCoordinates is used for points created without a location (Naha, Okinawa).
var DefaultCoordinates = Coordinates{Lat: 26.2124, Lng: 127.6809}

type LocationPoint struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    Category    `json:"category"`
	Coordinates Coordinates `json:"coordinates"`
	Day         int         `json:"day"`
	Completed   bool        `json:"isCompleted"`
	Phone       string      `json:"phone,omitempty"`
	Mapcode     string      `json:"mapcode,omitempty"`
	Tips        []string    `json:"tips"`
	Description string      `json:"description,omitempty"`
}

type Accommodation struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type TripMetadata struct {
	Title          string          `json:"title"`
	Destination    string          `json:"destination"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	CompanionType  string          `json:"companionType"`
	Pace           Pace            `json:"pace"`
	Accommodations []Accommodation `json:"accommodations"`
}

// Span returns the trip length in days, counting both ends.
func (m TripMetadata) Span() (int, error) {
	start, end, err := parseRange(m.StartDate, m.EndDate)
	if err != nil {
		return 0, err
	}
	// Unix seconds; time.Duration overflows past ~292 years
	return int((end.Unix()-start.Unix())/secondsPerDay) + 1, nil
}

type Trip struct {
	ID       string          `json:"id"`
	Metadata TripMetadata    `json:"metadata"`
	Points   []LocationPoint `json:"points"`
	Progress float64         `json:"progress"`
}

// RecomputeProgress sets Progress to the share of completed points.
func (t *Trip) RecomputeProgress() {
	if len(t.Points) == 0 {
		t.Progress = 0
		return
	}
	done := 0
	for _, p := range t.Points {
		if p.Completed {
			done++
		}
	}
	t.Progress = float64(done) / float64(len(t.Points))
}

// Clone returns a deep copy; no slice of the result aliases t.
func (t Trip) Clone() Trip {
	out := t
	out.Metadata.Accommodations = cloneAccommodations(t.Metadata.Accommodations)
	if t.Points != nil {
		out.Points = make([]LocationPoint, len(t.Points))
		for i, p := range t.Points {
			out.Points[i] = p.Clone()
		}
	}
	return out
}

func (p LocationPoint) Clone() LocationPoint {
	out := p
	if p.Tips != nil {
		out.Tips = append(make([]string, 0, len(p.Tips)), p.Tips...)
	}
	return out
}

func cloneAccommodations(in []Accommodation) []Accommodation {
	if in == nil {
		return nil
	}
	return append(make([]Accommodation, 0, len(in)), in...)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func IsValidDateRange(start, end time.Time) bool {
	return !start.After(end)
}

// IsValidDay reports whether day is a 1-based index into a trip of span days.
func IsValidDay(day, span int) bool {
	return day >= 1 && day <= span
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	s, err := ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	if !IsValidDateRange(s, e) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange, start, end)
	}
	return s, e, nil
}

// ValidateAccommodation checks the accommodation's own date range.
func ValidateAccommodation(a Accommodation) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("accommodation name is required")
	}
	_, _, err := parseRange(a.StartDate, a.EndDate)
	return err
}
