package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trip_planner/internal/domain"
)

type wizardView struct {
	Step                 string                 `json:"step"`
	Draft                domain.Draft           `json:"draft"`
	Preview              []domain.LocationPoint `json:"preview,omitempty"`
	SearchingAttractions bool                   `json:"searchingAttractions"`
	SearchingHotels      bool                   `json:"searchingHotels"`
}

func (s *Server) mountWizard(h *Handlers) {
	s.mux.Route("/v1/wizard", func(r chi.Router) {
		r.Get("/", h.wizardState)
		r.Post("/begin", h.wizardAction(func(r *http.Request) error { return h.Wizard.Begin(r.Context()) }))
		r.Post("/resume", h.wizardResume)
		r.Post("/next", h.wizardAction(func(*http.Request) error { return h.Wizard.Next() }))
		r.Post("/back", h.wizardAction(func(*http.Request) error { return h.Wizard.Back() }))
		r.Post("/save", h.wizardAction(func(r *http.Request) error { return h.Wizard.SaveAndExit(r.Context()) }))
		r.Post("/abandon", h.wizardAction(func(r *http.Request) error { return h.Wizard.Abandon(r.Context()) }))
		r.Put("/fields", h.wizardFields)

		r.Post("/attractions", h.fetchAttractions)
		r.Post("/candidates", h.addCandidate)
		r.Post("/candidates/{cid}/toggle", h.toggleCandidate)
		r.Patch("/candidates/{cid}", h.updateCandidate)

		r.Post("/hotels", h.fetchHotels)
		r.Post("/hotels/accept", h.acceptHotel)
		r.Post("/accommodations", h.wizardAddAccommodation)
		r.Delete("/accommodations/{idx}", h.wizardRemoveAccommodation)

		r.Get("/review", h.finalReview)
		r.Post("/confirm", h.confirmReview)
		r.Post("/publish", h.publish)
	})
}

func (h *Handlers) view() wizardView {
	return wizardView{
		Step:                 h.State.Step().String(),
		Draft:                h.State.Draft(),
		Preview:              h.State.Preview(),
		SearchingAttractions: h.State.SearchingAttractions(),
		SearchingHotels:      h.State.SearchingHotels(),
	}
}

func (h *Handlers) wizardState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view())
}

// wizardAction runs fn and answers with the new wizard state.
func (h *Handlers) wizardAction(fn func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.view())
	}
}

func (h *Handlers) wizardResume(w http.ResponseWriter, r *http.Request) {
	found, err := h.Wizard.Resume(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		writeProblem(w, http.StatusNotFound, "Not Found", "no saved draft")
		return
	}
	writeJSON(w, http.StatusOK, h.view())
}

// wizardFields sets whichever fields are present. Each setter checks its own step.
func (h *Handlers) wizardFields(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Destination *string `json:"destination"`
		Title       *string `json:"title"`
		StartDate   *string `json:"startDate"`
		EndDate     *string `json:"endDate"`
		Companion   *string `json:"companionType"`
		Pace        *string `json:"pace"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	var err error
	switch {
	case body.Destination != nil:
		err = h.Wizard.SetDestination(*body.Destination)
	case body.StartDate != nil || body.EndDate != nil:
		err = h.Wizard.SetDates(deref(body.StartDate), deref(body.EndDate))
	case body.Companion != nil:
		err = h.Wizard.SetCompanion(*body.Companion)
	case body.Pace != nil:
		err = h.Wizard.SetPace(*body.Pace)
	}
	if err == nil && body.Title != nil {
		err = h.Wizard.SetTitle(*body.Title)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view())
}

func (h *Handlers) fetchAttractions(w http.ResponseWriter, r *http.Request) {
	cands, err := h.Wizard.FetchAttractions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cands)
}

func (h *Handlers) addCandidate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string          `json:"name"`
		Category domain.Category `json:"category"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.Wizard.AddCustomCandidate(body.Name, body.Category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) toggleCandidate(w http.ResponseWriter, r *http.Request) {
	selected, err := h.Wizard.ToggleSelection(chi.URLParam(r, "cid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"selected": selected})
}

func (h *Handlers) updateCandidate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Wizard.UpdateCandidate(chi.URLParam(r, "cid"), body.Name, body.Description); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view())
}

func (h *Handlers) fetchHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Wizard.FetchHotels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hotels)
}

func (h *Handlers) acceptHotel(w http.ResponseWriter, r *http.Request) {
	var a domain.Accommodation
	if err := decode(r, &a); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Wizard.AcceptHotel(a.Name, a.StartDate, a.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) wizardAddAccommodation(w http.ResponseWriter, r *http.Request) {
	var a domain.Accommodation
	if err := decode(r, &a); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Wizard.AddAccommodation(a); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view())
}

func (h *Handlers) wizardRemoveAccommodation(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid index", "idx must be a number")
		return
	}
	if err := h.Wizard.RemoveAccommodation(r.Context(), idx); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view())
}

func (h *Handlers) finalReview(w http.ResponseWriter, r *http.Request) {
	rv, err := h.Wizard.FinalReview()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *Handlers) confirmReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Request string `json:"request"`
	}
	if r.ContentLength != 0 {
		if err := decode(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
	}
	pts, err := h.Wizard.ConfirmFinalReview(r.Context(), body.Request)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pts)
}

func (h *Handlers) publish(w http.ResponseWriter, r *http.Request) {
	t, err := h.Wizard.Publish(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
