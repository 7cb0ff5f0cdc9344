package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	ErrInvalidDateRange      = errors.New("invalid date range")
	ErrInvalidDay            = errors.New("day outside trip span")
	ErrPointNotFound         = errors.New("point not found")
	ErrAccommodationNotFound = errors.New("accommodation not found")
	ErrTripNotFound          = errors.New("trip not found")
	ErrReorderMismatch       = errors.New("reorder ids are not a permutation of the trip's points")

	// Recovered by returning an empty suggestion set.
	ErrRecommendationUnavailable = errors.New("recommendation unavailable")

	// Recovered by treating the stored value as absent.
	ErrPersistenceReadCorrupt = errors.New("stored value is corrupt")
	ErrPersistenceWrite       = errors.New("persistence write failed")

	ErrWrongStep       = errors.New("operation not allowed at current wizard step")
	ErrReviewRequired  = errors.New("final review must be confirmed before generation")
	ErrIncompleteDraft = errors.New("draft is missing required information")
	ErrNotConfirmed    = errors.New("action was not confirmed")
	ErrDraftReplaced   = errors.New("draft was replaced while the request was in flight")
)
