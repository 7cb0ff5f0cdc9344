package recommend

import (
	"strconv"
	"strings"

	"trip_planner/internal/domain"
)

/********** alias registries (single source of truth) **********/

var suggestionAliases = map[string][]string{
	"name":        {"name", "title", "hotelName", "hotel_name", "place", "place_name"},
	"description": {"description", "desc", "longDesc", "summary", "reason"},
	"category":    {"category", "type", "kind"},
}

var pointAliases = map[string][]string{
	"name":        {"name", "title", "place", "place_name"},
	"category":    {"type", "category", "kind"},
	"description": {"desc", "description", "details", "summary"},
	"phone":       {"phone", "tel", "phoneNumber", "phone_number"},
	"mapcode":     {"mapcode", "mapCode", "map_code"},
}

var (
	latPaths = []string{"coordinates.lat", "coordinates.latitude", "lat", "latitude", "location.lat"}
	lngPaths = []string{"coordinates.lng", "coordinates.lon", "coordinates.longitude", "lng", "lon", "longitude", "location.lng"}
)

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// getFloatFlexible: number from several paths (float64/int/string like "26,21").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstIntFlexible: int from several paths (float64/int/string like "Day 2").
func firstIntFlexible(m map[string]any, paths ...string) *int {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int(v)
			return &x
		case int:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), "day"))
			if s == "" {
				continue
			}
			if n, err := strconv.Atoi(s); err == nil {
				return &n
			}
		}
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {text/name}; a bare string
// becomes a one-element slice.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		switch raw := lookupAny(m, k).(type) {
		case []any:
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if s := strings.TrimSpace(t); s != "" {
						out = append(out, s)
					}
				case map[string]any:
					if s := lookupStr(t, "text"); s != "" {
						out = append(out, s)
						continue
					}
					if s := lookupStr(t, "name"); s != "" {
						out = append(out, s)
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			if s := strings.TrimSpace(raw); s != "" {
				return []string{s}
			}
		}
	}
	return nil
}

/********** suggestion mapper **********/

// mapSuggestions drops items without a name and keeps the first of each duplicate name.
func mapSuggestions(in []map[string]any, kind domain.SuggestionKind) []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, it := range in {
		name := deref(firstNonEmptyAlias(it, suggestionAliases, "name"))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		s := domain.Suggestion{
			Name:        name,
			Description: deref(firstNonEmptyAlias(it, suggestionAliases, "description")),
			Category:    domain.CategorySightseeing,
		}
		if kind == domain.KindHotel {
			s.Category = domain.CategoryStay
		} else if c, ok := domain.ParseCategory(deref(firstNonEmptyAlias(it, suggestionAliases, "category"))); ok {
			s.Category = c
		}
		out = append(out, s)
	}
	return out
}

/********** plan point mapper **********/

// mapPoints converts generated plan items into points. IDs are left empty for the
// caller to assign; a missing day defaults to 1 and missing coordinates to the default.
func mapPoints(in []map[string]any) []domain.LocationPoint {
	out := make([]domain.LocationPoint, 0, len(in))
	for _, it := range in {
		name := deref(firstNonEmptyAlias(it, pointAliases, "name"))
		if name == "" {
			continue
		}
		p := domain.LocationPoint{
			Name:        name,
			Category:    domain.CategorySightseeing,
			Day:         1,
			Coordinates: domain.DefaultCoordinates,
			Description: deref(firstNonEmptyAlias(it, pointAliases, "description")),
			Phone:       deref(firstNonEmptyAlias(it, pointAliases, "phone")),
			Mapcode:     deref(firstNonEmptyAlias(it, pointAliases, "mapcode")),
			Tips:        firstSliceStrings(it, "tips", "notes"),
		}
		if c, ok := domain.ParseCategory(deref(firstNonEmptyAlias(it, pointAliases, "category"))); ok {
			p.Category = c
		}
		if d := firstIntFlexible(it, "day", "dayNumber", "day_number"); d != nil {
			p.Day = *d
		}
		lat, lng := getFloatFlexible(it, latPaths...), getFloatFlexible(it, lngPaths...)
		if lat != nil && lng != nil {
			p.Coordinates = domain.Coordinates{Lat: *lat, Lng: *lng}
		}
		if p.Tips == nil {
			p.Tips = []string{}
		}
		out = append(out, p)
	}
	return out
}
