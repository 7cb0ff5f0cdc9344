package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/domain"
)

var errEmptyPlan = errors.New("generated plan has no usable points")

// Wizard drives the planning steps over a shared AppState and commits the result
// as a new trip.
type Wizard struct {
	st    *AppState
	repo  domain.TripRepository
	rec   domain.Recommender
	gen   domain.PlanGenerator
	ui    domain.Interactor
	newID func() string
}

func NewWizard(st *AppState, repo domain.TripRepository, rec domain.Recommender, gen domain.PlanGenerator, ui domain.Interactor) *Wizard {
	return &Wizard{st: st, repo: repo, rec: rec, gen: gen, ui: ui, newID: uuid.NewString}
}

// FinalReview summarises the draft before generation. Pacing and overlaps are
// advisory; Missing blocks generation.
type FinalReview struct {
	Days          int                           `json:"days"`
	SelectedCount int                           `json:"selectedCount"`
	Pacing        domain.PacingAssessment       `json:"pacing"`
	Missing       []string                      `json:"missing,omitempty"`
	Overlaps      []domain.AccommodationOverlap `json:"overlaps,omitempty"`
}

func (r FinalReview) Ready() bool { return len(r.Missing) == 0 }

/********** session **********/

// Begin starts a fresh draft at the destination step.
func (w *Wizard) Begin(ctx context.Context) error {
	w.st.mu.Lock()
	defer w.st.mu.Unlock()
	if err := w.requireLocked(StepIdle); err != nil {
		return err
	}
	w.resetLocked()
	w.moveLocked(StepDestination)
	return nil
}

// Resume loads the saved draft. The step is not stored, so a resumed draft always
// restarts at the destination step with its values filled in. found is false when
// there is nothing to resume.
func (w *Wizard) Resume(ctx context.Context) (found bool, err error) {
	w.st.mu.Lock()
	defer w.st.mu.Unlock()
	if err := w.requireLocked(StepIdle); err != nil {
		return false, err
	}
	d, ok := w.repo.LoadDraft(ctx)
	if !ok {
		return false, nil
	}
	d.Metadata.Pace = domain.ParsePace(string(d.Metadata.Pace))
	w.st.draft = d
	w.st.preview = nil
	w.st.draftGen++
	w.moveLocked(StepDestination)
	log.Info().Str("destination", d.Metadata.Destination).Int("candidates", len(d.Candidates)).Msg("draft resumed")
	return true, nil
}

// SaveAndExit stores the draft and pauses the wizard.
func (w *Wizard) SaveAndExit(ctx context.Context) error {
	w.st.mu.Lock()
	defer w.st.mu.Unlock()
	if err := w.requireLocked(StepDestination, StepDates, StepCompanion, StepPace, StepAttractions,
		StepSelect, StepReview, StepAccommodation, StepPreview); err != nil {
		return err
	}
	if err := w.repo.SaveDraft(ctx, w.st.draft.Clone()); err != nil {
		return err
	}
	log.Info().Str("step", w.st.step.String()).Msg("draft saved")
	w.resetLocked()
	w.moveLocked(StepIdle)
	return nil
}

// Abandon discards the draft, in memory and in the store, after confirmation.
func (w *Wizard) Abandon(ctx context.Context) error {
	if step := w.st.Step(); step == StepIdle || step == StepGenerating {
		return fmt.Errorf("%w: abandon at step %s", domain.ErrWrongStep, step)
	}
	if err := confirm(ctx, w.ui, "Discard the current draft?"); err != nil {
		return err
	}
	w.st.mu.Lock()
	defer w.st.mu.Unlock()
	if err := w.repo.ClearDraft(ctx); err != nil {
		return err
	}
	w.resetLocked()
	w.moveLocked(StepIdle)
	return nil
}

/********** steps 1-4 **********/

func (w *Wizard) SetDestination(dest string) error {
	return w.edit(func(d *domain.Draft) error {
		d.Metadata.Destination = strings.TrimSpace(dest)
		return nil
	}, StepDestination)
}

func (w *Wizard) SetTitle(title string) error {
	return w.edit(func(d *domain.Draft) error {
		d.Metadata.Title = strings.TrimSpace(title)
		return nil
	}, StepDestination, StepReview, StepAccommodation, StepPreview)
}

// SetDates stores the range in canonical YYYY-MM-DD form.
func (w *Wizard) SetDates(start, end string) error {
	return w.edit(func(d *domain.Draft) error {
		s, errS := domain.ParseDate(start)
		e, errE := domain.ParseDate(end)
		if errS != nil || errE != nil || !domain.IsValidDateRange(s, e) {
			return fmt.Errorf("%w: %q to %q", domain.ErrInvalidDateRange, start, end)
		}
		d.Metadata.StartDate = s.Format(domain.DateLayout)
		d.Metadata.EndDate = e.Format(domain.DateLayout)
		return nil
	}, StepDates)
}

func (w *Wizard) SetCompanion(companion string) error {
	return w.edit(func(d *domain.Draft) error {
		d.Metadata.CompanionType = strings.TrimSpace(companion)
		return nil
	}, StepCompanion)
}

func (w *Wizard) SetPace(pace string) error {
	return w.edit(func(d *domain.Draft) error {
		d.Metadata.Pace = domain.ParsePace(pace)
		return nil
	}, StepPace)
}

/********** navigation **********/

// Next advances one step after validating the current one. Generation is entered
// only through ConfirmFinalReview.
func (w *Wizard) Next() error {
	w.st.mu.Lock()
	defer w.st.mu.Unlock()

	m := w.st.draft.Metadata
	switch w.st.step {
	case StepDestination:
		if m.Destination == "" {
			return fmt.Errorf("%w: destination", domain.ErrIncompleteDraft)
		}
	case StepDates:
		if !domain.IsDateRangeValid(m.StartDate, m.EndDate) {
			return fmt.Errorf("%w: %q to %q", domain.ErrInvalidDateRange, m.StartDate, m.EndDate)
		}
	case StepCompanion, StepPace, StepAttractions, StepSelect, StepReview:
	case StepAccommodation:
		return domain.ErrReviewRequired
	default:
		return fmt.Errorf("%w: next at step %s", domain.ErrWrongStep, w.st.step)
	}
	w.moveLocked(w.st.step + 1)
	return nil
}

// Back goes one step back without discarding anything. From the preview it returns
// to accommodation entry.
func (w *Wizard) Back() error {
	w.st.mu.Lock()
	defer w.st.mu.Unlock()
	switch w.st.step {
	case StepIdle, StepDestination, StepGenerating:
		return fmt.Errorf("%w: back at step %s", domain.ErrWrongStep, w.st.step)
	case StepPreview:
		w.moveLocked(StepAccommodation)
	default:
		w.moveLocked(w.st.step - 1)
	}
	return nil
}

/********** steps 5-7: candidates **********/

// FetchAttractions asks for suggestions and merges them into the candidate list.
// Unselected candidates are replaced by the fresh ones; selected ones are kept.
// On failure the list is left alone and the error wraps ErrRecommendationUnavailable.
func (w *Wizard) FetchAttractions(ctx context.Context) ([]domain.Candidate, error) {
	w.st.mu.Lock()
	if err := w.requireLocked(StepAttractions, StepSelect); err != nil {
		w.st.mu.Unlock()
		return nil, err
	}
	rc := recommendationContext(w.st.draft.Metadata)
	gen := w.st.draftGen
	w.st.mu.Unlock()

	release := w.st.acquire(&w.st.attractionFetches)
	defer release()

	sugg, err := w.rec.FetchSuggestions(ctx, domain.KindAttraction, rc)
	if err != nil {
		return []domain.Candidate{}, err
	}

	w.st.mu.Lock()
	defer w.st.mu.Unlock()
	if w.staleLocked(gen, domain.KindAttraction) {
		return []domain.Candidate{}, domain.ErrDraftReplaced
	}
	d := &w.st.draft
	merged := d.Selected()
	names := make(map[string]struct{}, len(merged))
	for _, c := range merged {
		names[strings.ToLower(c.Name)] = struct{}{}
	}
	next := nextCandidateNumber(d.Candidates)
	for _, s := range sugg {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if _, dup := names[key]; dup || key == "" {
			continue
		}
		names[key] = struct{}{}
		merged = append(merged, domain.Candidate{
			ID:          "cand-" + strconv.Itoa(next),
			Name:        strings.TrimSpace(s.Name),
			Description: s.Description,
			Category:    normalizeCategory(s.Category),
		})
		next++
	}
	d.Candidates = merged
	log.Info().Str("destination", rc.Destination).Int("candidates", len(merged)).Msg("attractions fetched")
	return append([]domain.Candidate(nil), merged...), nil
}

// AddCustomCandidate adds a place by hand and selects it. A name already in the
// list selects the existing candidate instead.
func (w *Wizard) AddCustomCandidate(name string, category domain.Category) (domain.Candidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Candidate{}, fmt.Errorf("%w: place name", domain.ErrIncompleteDraft)
	}
	var out domain.Candidate
	err := w.edit(func(d *domain.Draft) error {
		for _, c := range d.Candidates {
			if strings.EqualFold(c.Name, name) {
				out = c
				if !d.IsSelected(c.ID) {
					d.SelectedIDs = append(d.SelectedIDs, c.ID)
				}
				return nil
			}
		}
		out = domain.Candidate{
			ID:       "cand-" + strconv.Itoa(nextCandidateNumber(d.Candidates)),
			Name:     name,
			Category: normalizeCategory(category),
		}
		d.Candidates = append(d.Candidates, out)
		d.SelectedIDs = append(d.SelectedIDs, out.ID)
		return nil
	}, StepAttractions, StepSelect, StepReview)
	return out, err
}

// ToggleSelection flips membership of id in the selection and reports the new state.
func (w *Wizard) ToggleSelection(id string) (selected bool, err error) {
	err = w.edit(func(d *domain.Draft) error {
		if candidateIndex(d.Candidates, id) < 0 {
			return fmt.Errorf("%w: candidate %s", domain.ErrNotFound, id)
		}
		for i, s := range d.SelectedIDs {
			if s == id {
				d.SelectedIDs = append(d.SelectedIDs[:i], d.SelectedIDs[i+1:]...)
				selected = false
				return nil
			}
		}
		d.SelectedIDs = append(d.SelectedIDs, id)
		selected = true
		return nil
	}, StepSelect, StepReview)
	return selected, err
}

// UpdateCandidate edits a candidate's name and description; empty values keep the old ones.
func (w *Wizard) UpdateCandidate(id, name, description string) error {
	return w.edit(func(d *domain.Draft) error {
		i := candidateIndex(d.Candidates, id)
		if i < 0 {
			return fmt.Errorf("%w: candidate %s", domain.ErrNotFound, id)
		}
		if n := strings.TrimSpace(name); n != "" {
			d.Candidates[i].Name = n
		}
		if desc := strings.TrimSpace(description); desc != "" {
			d.Candidates[i].Description = desc
		}
		return nil
	}, StepSelect, StepReview)
}

/********** step 7.5: accommodations **********/

// FetchHotels replaces the hotel suggestions. On failure they are left alone.
func (w *Wizard) FetchHotels(ctx context.Context) ([]domain.Suggestion, error) {
	w.st.mu.Lock()
	if err := w.requireLocked(StepAccommodation); err != nil {
		w.st.mu.Unlock()
		return nil, err
	}
	rc := recommendationContext(w.st.draft.Metadata)
	gen := w.st.draftGen
	w.st.mu.Unlock()

	release := w.st.acquire(&w.st.hotelFetches)
	defer release()

	sugg, err := w.rec.FetchSuggestions(ctx, domain.KindHotel, rc)
	if err != nil {
		return []domain.Suggestion{}, err
	}

	w.st.mu.Lock()
	defer w.st.mu.Unlock()
	if w.staleLocked(gen, domain.KindHotel) {
		return []domain.Suggestion{}, domain.ErrDraftReplaced
	}
	w.st.draft.Hotels = append([]domain.Suggestion(nil), sugg...)
	return append([]domain.Suggestion(nil), sugg...), nil
}

// AcceptHotel turns a hotel suggestion into an accommodation. Empty dates default
// to the trip's dates.
func (w *Wizard) AcceptHotel(name, start, end string) (domain.Accommodation, error) {
	var out domain.Accommodation
	err := w.edit(func(d *domain.Draft) error {
		found := false
		for _, h := range d.Hotels {
			if strings.EqualFold(h.Name, strings.TrimSpace(name)) {
				out.Name, found = h.Name, true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: hotel %q", domain.ErrNotFound, name)
		}
		out.StartDate, out.EndDate = orDate(start, d.Metadata.StartDate), orDate(end, d.Metadata.EndDate)
		if err := domain.ValidateAccommodation(out); err != nil {
			return err
		}
		d.Metadata.Accommodations = append(d.Metadata.Accommodations, out)
		return nil
	}, StepAccommodation)
	return out, err
}

func (w *Wizard) AddAccommodation(a domain.Accommodation) error {
	a.Name = strings.TrimSpace(a.Name)
	if err := domain.ValidateAccommodation(a); err != nil {
		return err
	}
	return w.edit(func(d *domain.Draft) error {
		d.Metadata.Accommodations = append(d.Metadata.Accommodations, a)
		return nil
	}, StepAccommodation)
}

// RemoveAccommodation deletes the accommodation at index once the user confirms.
func (w *Wizard) RemoveAccommodation(ctx context.Context, index int) error {
	d := w.st.Draft()
	if step := w.st.Step(); step != StepAccommodation {
		return fmt.Errorf("%w: remove accommodation at step %s", domain.ErrWrongStep, step)
	}
	if index < 0 || index >= len(d.Metadata.Accommodations) {
		return fmt.Errorf("%w: index %d", domain.ErrAccommodationNotFound, index)
	}
	target := d.Metadata.Accommodations[index]
	if err := confirm(ctx, w.ui, fmt.Sprintf("Remove %s?", target.Name)); err != nil {
		return err
	}
	return w.edit(func(d *domain.Draft) error {
		// the list may have changed while the user was answering
		accs := d.Metadata.Accommodations
		if index >= len(accs) || accs[index] != target {
			return fmt.Errorf("%w: %s is no longer at index %d", domain.ErrAccommodationNotFound, target.Name, index)
		}
		d.Metadata.Accommodations = append(accs[:index], accs[index+1:]...)
		return nil
	}, StepAccommodation)
}

/********** review, generation, publish **********/

func (w *Wizard) FinalReview() (FinalReview, error) {
	w.st.mu.Lock()
	defer w.st.mu.Unlock()
	if err := w.requireLocked(StepReview, StepAccommodation); err != nil {
		return FinalReview{}, err
	}
	return w.reviewLocked(), nil
}

// ConfirmFinalReview is the only way into generation. On success the wizard is at
// the preview step; on failure it returns to the step it was called from.
func (w *Wizard) ConfirmFinalReview(ctx context.Context, request string) ([]domain.LocationPoint, error) {
	w.st.mu.Lock()
	if err := w.requireLocked(StepReview, StepAccommodation); err != nil {
		w.st.mu.Unlock()
		return nil, err
	}
	rv := w.reviewLocked()
	if !rv.Ready() {
		w.st.mu.Unlock()
		return nil, fmt.Errorf("%w: missing %s", domain.ErrIncompleteDraft, strings.Join(rv.Missing, ", "))
	}
	prev := w.st.step
	d := w.st.draft.Clone()
	in := domain.GenerationInput{
		Metadata:       d.Metadata,
		Selected:       d.Selected(),
		Accommodations: d.Metadata.Accommodations,
		Pace:           d.Metadata.Pace,
		Request:        strings.TrimSpace(request),
	}
	w.moveLocked(StepGenerating)
	w.st.mu.Unlock()

	pts, err := w.gen.Generate(ctx, in)

	w.st.mu.Lock()
	defer w.st.mu.Unlock()
	if err == nil {
		pts = w.normalizePoints(pts, rv.Days)
		if len(pts) == 0 {
			err = errEmptyPlan
		}
	}
	if err != nil {
		w.moveLocked(prev)
		log.Warn().Err(err).Str("destination", in.Metadata.Destination).Msg("plan generation failed")
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	w.st.preview = pts
	w.moveLocked(StepPreview)
	return clonePoints(pts), nil
}

// Publish turns the previewed plan into a trip at the front of the saved list,
// clears the draft and makes the trip current. If saving the list fails nothing
// changes and the wizard stays on the preview.
func (w *Wizard) Publish(ctx context.Context) (domain.Trip, error) {
	w.st.mu.Lock()
	defer w.st.mu.Unlock()
	if err := w.requireLocked(StepPreview); err != nil {
		return domain.Trip{}, err
	}

	d := w.st.draft.Clone()
	trip := domain.Trip{
		ID:       w.newID(),
		Metadata: d.Metadata,
		Points:   clonePoints(w.st.preview),
	}
	if trip.Metadata.Title == "" {
		trip.Metadata.Title = trip.Metadata.Destination
	}
	if trip.Points == nil {
		trip.Points = []domain.LocationPoint{}
	}
	trip.RecomputeProgress()

	trips := append([]domain.Trip{trip}, w.repo.LoadTrips(ctx)...)
	if err := w.repo.SaveTrips(ctx, trips); err != nil {
		return domain.Trip{}, err
	}
	w.st.trips = cloneTrips(trips)

	if err := w.repo.ClearDraft(ctx); err != nil {
		log.Warn().Err(err).Msg("clear draft after publish failed")
	}
	if err := w.repo.SaveCurrent(ctx, trip); err != nil {
		log.Warn().Err(err).Str("trip_id", trip.ID).Msg("save current trip failed")
	}
	cur := trip.Clone()
	w.st.current = &cur

	w.resetLocked()
	w.moveLocked(StepIdle)
	log.Info().Str("trip_id", trip.ID).Str("destination", trip.Metadata.Destination).
		Int("points", len(trip.Points)).Msg("trip published")
	return trip.Clone(), nil
}

/********** helpers **********/

func (w *Wizard) edit(fn func(d *domain.Draft) error, allowed ...Step) error {
	w.st.mu.Lock()
	defer w.st.mu.Unlock()
	if err := w.requireLocked(allowed...); err != nil {
		return err
	}
	d := w.st.draft.Clone()
	if err := fn(&d); err != nil {
		return err
	}
	w.st.draft = d
	return nil
}

func (w *Wizard) requireLocked(allowed ...Step) error {
	for _, s := range allowed {
		if w.st.step == s {
			return nil
		}
	}
	return fmt.Errorf("%w: at step %s", domain.ErrWrongStep, w.st.step)
}

func (w *Wizard) moveLocked(to Step) {
	from := w.st.step
	w.st.step = to
	observability.ObserveTransition(from.String(), to.String())
	log.Debug().Str("from", from.String()).Str("step", to.String()).Msg("wizard step")
}

func (w *Wizard) resetLocked() {
	w.st.draft = newDraft()
	w.st.preview = nil
	w.st.draftGen++
}

// staleLocked reports whether the draft a fetch started for has since been replaced.
func (w *Wizard) staleLocked(gen uint64, kind domain.SuggestionKind) bool {
	if w.st.draftGen == gen {
		return false
	}
	log.Info().Str("kind", string(kind)).Msg("dropping suggestions for a replaced draft")
	return true
}

func (w *Wizard) reviewLocked() FinalReview {
	d := w.st.draft
	rv := FinalReview{SelectedCount: len(d.Selected())}
	if strings.TrimSpace(d.Metadata.Destination) == "" {
		rv.Missing = append(rv.Missing, "destination")
	}
	if days, err := d.Metadata.Span(); err == nil {
		rv.Days = days
		rv.Pacing = domain.ComputePacingAssessment(days, rv.SelectedCount, d.Metadata.Pace)
	} else {
		rv.Missing = append(rv.Missing, "dates")
	}
	if rv.SelectedCount == 0 {
		rv.Missing = append(rv.Missing, "places")
	}
	rv.Overlaps = domain.OverlappingAccommodations(d.Metadata.Accommodations)
	return rv
}

// normalizePoints gives generated points fresh ids, clamps days into the trip and
// drops nameless entries.
func (w *Wizard) normalizePoints(in []domain.LocationPoint, span int) []domain.LocationPoint {
	out := make([]domain.LocationPoint, 0, len(in))
	for _, p := range in {
		p = p.Clone()
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		p.ID = w.newID()
		p.Category = normalizeCategory(p.Category)
		p.Completed = false
		if p.Day < 1 {
			p.Day = 1
		}
		if p.Day > span {
			p.Day = span
		}
		if p.Tips == nil {
			p.Tips = []string{}
		}
		out = append(out, p)
	}
	return out
}

func recommendationContext(m domain.TripMetadata) domain.RecommendationContext {
	return domain.RecommendationContext{Destination: m.Destination, CompanionType: m.CompanionType, Pace: m.Pace}
}

func nextCandidateNumber(cs []domain.Candidate) int {
	next := 1
	for _, c := range cs {
		if n, err := strconv.Atoi(strings.TrimPrefix(c.ID, "cand-")); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

func candidateIndex(cs []domain.Candidate, id string) int {
	for i, c := range cs {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func orDate(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

// confirm asks the user and maps a refusal (or no way to ask) to ErrNotConfirmed.
func confirm(ctx context.Context, ui domain.Interactor, msg string) error {
	if ui == nil {
		return domain.ErrNotConfirmed
	}
	ok, err := ui.Confirm(ctx, msg)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotConfirmed
	}
	return nil
}
