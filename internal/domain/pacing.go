package domain

import (
	"math"
	"strings"
)

type Pace string

const (
	PaceRelaxed Pace = "relaxed"
	PaceNormal  Pace = "normal"
	PaceTight   Pace = "tight"
)

// ParsePace accepts the canonical names plus the older slow/fast labels.
// Anything else falls back to normal.
func ParsePace(s string) Pace {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "relaxed", "slow":
		return PaceRelaxed
	case "tight", "fast":
		return PaceTight
	default:
		return PaceNormal
	}
}

// DensityBounds is the recommended number of places per day for a pace.
type DensityBounds struct {
	MinPerDay float64
	MaxPerDay float64
}

var paceDensity = map[Pace]DensityBounds{
	PaceRelaxed: {MinPerDay: 1, MaxPerDay: 3},
	PaceNormal:  {MinPerDay: 3, MaxPerDay: 6},
	PaceTight:   {MinPerDay: 5, MaxPerDay: 8},
}

func Density(p Pace) DensityBounds {
	return paceDensity[ParsePace(string(p))]
}

type PacingStatus string

const (
	PacingUnder PacingStatus = "under"
	PacingOK    PacingStatus = "ok"
	PacingOver  PacingStatus = "over"
)

type PacingAssessment struct {
	Status           PacingStatus `json:"status"`
	RecommendedRange [2]int       `json:"recommendedRange"`
}

// ComputePacingAssessment is advisory: it never blocks the wizard.
func ComputePacingAssessment(days, selectedCount int, pace Pace) PacingAssessment {
	b := Density(pace)
	lo := int(math.Floor(float64(days) * b.MinPerDay))
	hi := int(math.Ceil(float64(days) * b.MaxPerDay))

	status := PacingOK
	switch {
	case selectedCount < lo:
		status = PacingUnder
	case selectedCount > hi:
		status = PacingOver
	}
	return PacingAssessment{Status: status, RecommendedRange: [2]int{lo, hi}}
}

// IsDateRangeValid reports whether both dates parse and start <= end.
func IsDateRangeValid(start, end string) bool {
	_, _, err := parseRange(start, end)
	return err == nil
}

type AccommodationOverlap struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

// OverlappingAccommodations lists index pairs whose stays overlap. Check-out day
// equal to the next check-in day is not an overlap. Unparseable entries are skipped.
func OverlappingAccommodations(accs []Accommodation) []AccommodationOverlap {
	var out []AccommodationOverlap
	for i := 0; i < len(accs); i++ {
		si, ei, err := parseRange(accs[i].StartDate, accs[i].EndDate)
		if err != nil {
			continue
		}
		for j := i + 1; j < len(accs); j++ {
			sj, ej, err := parseRange(accs[j].StartDate, accs[j].EndDate)
			if err != nil {
				continue
			}
			if si.Before(ej) && sj.Before(ei) {
				out = append(out, AccommodationOverlap{First: i, Second: j})
			}
		}
	}
	return out
}
