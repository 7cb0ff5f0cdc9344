package domain

import "context"

// KVStore is the durable local key-value store behind the trip store.
// Get returns ErrNotFound for a missing key. Put replaces the value atomically.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// TextGenerator is the opaque text-generation backend.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type SuggestionKind string

const (
	KindAttraction SuggestionKind = "attraction"
	KindHotel      SuggestionKind = "hotel"
)

type RecommendationContext struct {
	Destination   string
	CompanionType string
	Pace          Pace
}

// Recommender returns an empty slice and an error wrapping
// ErrRecommendationUnavailable on any failure.
type Recommender interface {
	FetchSuggestions(ctx context.Context, kind SuggestionKind, rc RecommendationContext) ([]Suggestion, error)
}

// PlanGenerator turns the wizard's selections into ordered, day-assigned points.
type PlanGenerator interface {
	Generate(ctx context.Context, in GenerationInput) ([]LocationPoint, error)
}

// Interactor is supplied by the presentation layer. Both calls block until the
// user answers or ctx is done.
type Interactor interface {
	Confirm(ctx context.Context, message string) (bool, error)
	// PromptText returns ok=false when the user dismissed the prompt.
	PromptText(ctx context.Context, message, def string) (string, bool, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// TripRepository persists the saved trip list, the current trip and the wizard draft.
// Loads never fail; unreadable values come back as absent.
type TripRepository interface {
	LoadTrips(ctx context.Context) []Trip
	SaveTrips(ctx context.Context, trips []Trip) error
	LoadDraft(ctx context.Context) (Draft, bool)
	SaveDraft(ctx context.Context, d Draft) error
	ClearDraft(ctx context.Context) error
	LoadCurrent(ctx context.Context) (Trip, bool)
	SaveCurrent(ctx context.Context, t Trip) error
	ClearCurrent(ctx context.Context) error
	ClearAll(ctx context.Context) error
}
