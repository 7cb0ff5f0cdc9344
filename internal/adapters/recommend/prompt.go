package recommend

import (
	"fmt"
	"strings"

	"trip_planner/internal/domain"
)

func suggestionPrompt(kind domain.SuggestionKind, rc domain.RecommendationContext) string {
	companion := orDefault(rc.CompanionType, "unspecified")
	d := domain.Density(rc.Pace)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Act as a professional travel planner for %q travelling as %q.\n", rc.Destination, companion)
	fmt.Fprintf(&sb, "The traveller prefers a %s pace: about %.0f to %.0f places per day.\n",
		domain.ParsePace(string(rc.Pace)), d.MinPerDay, d.MaxPerDay)

	switch kind {
	case domain.KindHotel:
		sb.WriteString("Recommend 5 places to stay that suit this traveller.\n")
		sb.WriteString(`Each item: {"name": "hotel name", "description": "why it fits"}` + "\n")
	default:
		sb.WriteString("Recommend a diverse list of places: about 10 sightseeing spots, 6 activities and 8 dining spots.\n")
		sb.WriteString(`Each item: {"name": "official name", "category": "sightseeing" | "activity" | "dining", "description": "short reason to visit"}` + "\n")
	}
	sb.WriteString("Return ONLY a single JSON array of objects. Do not add comments.")
	return sb.String()
}

func planPrompt(in domain.GenerationInput) string {
	m := in.Metadata
	d := domain.Density(in.Pace)

	places := make([]string, 0, len(in.Selected))
	for _, c := range in.Selected {
		places = append(places, c.Name)
	}
	visit := strings.Join(places, ", ")
	if visit == "" {
		visit = "None selected. Suggest 3-4 attractions that fit the companion type."
	}
	stays := make([]string, 0, len(in.Accommodations))
	for _, a := range in.Accommodations {
		stays = append(stays, fmt.Sprintf("%s (%s~%s)", a.Name, a.StartDate, a.EndDate))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a concise sequential itinerary for %s (%s~%s).\n", m.Destination, m.StartDate, m.EndDate)
	fmt.Fprintf(&sb, "- Companion: %s\n", orDefault(m.CompanionType, "unspecified"))
	fmt.Fprintf(&sb, "- Pace: %s (%.0f-%.0f places per day)\n", domain.ParsePace(string(in.Pace)), d.MinPerDay, d.MaxPerDay)
	fmt.Fprintf(&sb, "- Places to visit: [%s]\n", visit)
	fmt.Fprintf(&sb, "- Confirmed accommodations: [%s]\n", orDefault(strings.Join(stays, ", "), "Not provided"))
	fmt.Fprintf(&sb, "- Special request: %s\n", orDefault(strings.TrimSpace(in.Request), "none"))
	sb.WriteString("Rules: points in chronological order starting at day 1; one single \"stay\" point per accommodation; ")
	sb.WriteString("realistic approximate coordinates for every point.\n")
	sb.WriteString(`Return JSON: {"points": [{"name": "string", "desc": "string", "type": "visit" | "food" | "logistics" | "stay", "day": number, "coordinates": {"lat": number, "lng": number}, "tips": ["string"]}]}`)
	return sb.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
