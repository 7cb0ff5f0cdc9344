// Package storage persists trips, the current trip and the wizard draft as JSON
// documents in a domain.KVStore.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/domain"
)

const (
	KeyTrips   = "user_trips_v2"
	KeyCurrent = "current_trip"
	KeyDraft   = "trip_draft_v1"

	ExportVersion = "2.0"
)

var ErrInvalidImport = errors.New("import document has no trips")

type TripStore struct {
	kv  domain.KVStore
	now func() time.Time
}

func NewTripStore(kv domain.KVStore) *TripStore {
	return &TripStore{kv: kv, now: time.Now}
}

// LoadTrips never fails: an absent or unreadable value yields an empty list.
func (s *TripStore) LoadTrips(ctx context.Context) []domain.Trip {
	var trips []domain.Trip
	if !s.load(ctx, KeyTrips, &trips) || trips == nil {
		return []domain.Trip{}
	}
	return trips
}

// SaveTrips replaces the whole list with a single write. On failure the stored
// value is left as it was.
func (s *TripStore) SaveTrips(ctx context.Context, trips []domain.Trip) error {
	if trips == nil {
		trips = []domain.Trip{}
	}
	return s.save(ctx, KeyTrips, trips)
}

func (s *TripStore) LoadDraft(ctx context.Context) (domain.Draft, bool) {
	var d domain.Draft
	if !s.load(ctx, KeyDraft, &d) {
		return domain.Draft{}, false
	}
	return d, true
}

func (s *TripStore) SaveDraft(ctx context.Context, d domain.Draft) error {
	d.UpdatedAt = s.now().UTC()
	return s.save(ctx, KeyDraft, d)
}

func (s *TripStore) ClearDraft(ctx context.Context) error {
	return s.del(ctx, KeyDraft)
}

func (s *TripStore) LoadCurrent(ctx context.Context) (domain.Trip, bool) {
	var t domain.Trip
	if !s.load(ctx, KeyCurrent, &t) {
		return domain.Trip{}, false
	}
	return t, true
}

func (s *TripStore) SaveCurrent(ctx context.Context, t domain.Trip) error {
	return s.save(ctx, KeyCurrent, t)
}

func (s *TripStore) ClearCurrent(ctx context.Context) error {
	return s.del(ctx, KeyCurrent)
}

// Snapshot returns every stored key with its raw value.
func (s *TripStore) Snapshot(ctx context.Context) (map[string]string, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		b, err := s.kv.Get(ctx, k)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[k] = string(b)
	}
	return out, nil
}

func (s *TripStore) ClearAll(ctx context.Context) error {
	if err := s.kv.Clear(ctx); err != nil {
		observability.ObserveStore("clear", "*", "error")
		return fmt.Errorf("%w: clear: %w", domain.ErrPersistenceWrite, err)
	}
	observability.ObserveStore("clear", "*", "ok")
	log.Info().Msg("local store cleared")
	return nil
}

type exportDoc struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
	Trips      []domain.Trip   `json:"trips"`
	Trip       *domain.Trip    `json:"trip,omitempty"`
	Points     json.RawMessage `json:"points,omitempty"`
}

// Export writes every saved trip as an indented versioned document.
func (s *TripStore) Export(ctx context.Context, w io.Writer) error {
	doc := exportDoc{Version: ExportVersion, ExportedAt: s.now().UTC(), Trips: s.LoadTrips(ctx)}
	if doc.Trips == nil {
		doc.Trips = []domain.Trip{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Import reads an export document. A multi-trip document replaces the saved list;
// a single-trip document ({"trip":..., "points":[...]}) is prepended, replacing any
// saved trip with the same id. The resulting list is returned.
func (s *TripStore) Import(ctx context.Context, r io.Reader) ([]domain.Trip, error) {
	var doc exportDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	var trips []domain.Trip
	switch {
	case doc.Trips != nil:
		trips = doc.Trips
	case doc.Trip != nil:
		t := *doc.Trip
		if len(doc.Points) > 0 {
			if err := json.Unmarshal(doc.Points, &t.Points); err != nil {
				return nil, fmt.Errorf("%w: points: %v", ErrInvalidImport, err)
			}
		}
		trips = []domain.Trip{t}
		for _, old := range s.LoadTrips(ctx) {
			if old.ID != t.ID {
				trips = append(trips, old)
			}
		}
	default:
		return nil, ErrInvalidImport
	}

	for i := range trips {
		if trips[i].Points == nil {
			trips[i].Points = []domain.LocationPoint{}
		}
		trips[i].RecomputeProgress()
	}
	if err := s.SaveTrips(ctx, trips); err != nil {
		return nil, err
	}
	log.Info().Int("trips", len(trips)).Str("version", doc.Version).Msg("trips imported")
	return trips, nil
}

func (s *TripStore) load(ctx context.Context, key string, dst any) bool {
	b, err := s.kv.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		observability.ObserveStore("get", key, "absent")
		return false
	}
	if err != nil {
		observability.ObserveStore("get", key, "error")
		log.Error().Err(err).Str("key", key).Msg("store read failed")
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		observability.ObserveStore("get", key, "corrupt")
		log.Warn().Err(fmt.Errorf("%w: %v", domain.ErrPersistenceReadCorrupt, err)).
			Str("key", key).Msg("ignoring stored value")
		return false
	}
	observability.ObserveStore("get", key, "ok")
	return true
}

func (s *TripStore) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		observability.ObserveStore("put", key, "error")
		return fmt.Errorf("%w: encode %s: %w", domain.ErrPersistenceWrite, key, err)
	}
	if err := s.kv.Put(ctx, key, b); err != nil {
		observability.ObserveStore("put", key, "error")
		log.Error().Err(err).Str("key", key).Msg("store write failed")
		return fmt.Errorf("%w: put %s: %w", domain.ErrPersistenceWrite, key, err)
	}
	observability.ObserveStore("put", key, "ok")
	return nil
}

func (s *TripStore) del(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
		observability.ObserveStore("delete", key, "error")
		return fmt.Errorf("%w: delete %s: %w", domain.ErrPersistenceWrite, key, err)
	}
	observability.ObserveStore("delete", key, "ok")
	return nil
}
