package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"trip_planner/internal/app"
	"trip_planner/internal/domain"
)

const maxBody = 1 << 20

// Snapshotter exposes the raw store for the debug routes.
type Snapshotter interface {
	Snapshot(ctx context.Context) (map[string]string, error)
}

type Handlers struct {
	Trips  *app.TripService
	Wizard *app.Wizard
	State  *app.AppState
	Store  Snapshotter
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1/trips", func(r chi.Router) {
		r.Get("/", h.listTrips)
		r.Get("/current", h.currentTrip)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getTrip)
			r.Delete("/", h.deleteTrip)
			r.Post("/select", h.selectTrip)
			r.Put("/title", h.renameTrip)
			r.Get("/days", h.tripDays)
			r.Put("/order", h.reorder)
			r.Post("/points", h.addPoint)
			r.Patch("/points/{pid}", h.editPoint)
			r.Delete("/points/{pid}", h.deletePoint)
			r.Post("/points/{pid}/toggle", h.togglePoint)
			r.Post("/accommodations", h.addAccommodation)
			r.Delete("/accommodations/{idx}", h.deleteAccommodation)
		})
	})

	s.mux.Route("/debug/store", func(r chi.Router) {
		r.Get("/", h.dumpStore)
		r.Post("/clear", h.clearStore)
		r.Post("/reload", h.reloadStore)
	})

	if h.Wizard != nil {
		s.mountWizard(h)
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, title := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeProblem(w, status, title, err.Error())
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrTripNotFound), errors.Is(err, domain.ErrPointNotFound),
		errors.Is(err, domain.ErrAccommodationNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, domain.ErrWrongStep), errors.Is(err, domain.ErrReviewRequired),
		errors.Is(err, domain.ErrDraftReplaced):
		return http.StatusConflict, "Conflict"
	case errors.Is(err, domain.ErrNotConfirmed):
		return http.StatusPreconditionRequired, "Confirmation Required"
	case errors.Is(err, domain.ErrInvalidDateRange), errors.Is(err, domain.ErrInvalidDay),
		errors.Is(err, domain.ErrReorderMismatch), errors.Is(err, domain.ErrIncompleteDraft):
		return http.StatusUnprocessableEntity, "Unprocessable Entity"
	case errors.Is(err, domain.ErrRecommendationUnavailable), errors.Is(err, domain.ErrPersistenceWrite):
		return http.StatusServiceUnavailable, "Service Unavailable"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "Bad Request"
	}
	return http.StatusInternalServerError, "Internal Server Error"
}

var errBadRequest = errors.New("bad request")

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeTagged serves v with a weak ETag and honours If-None-Match.
func writeTagged(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

/********** trips **********/

func (h *Handlers) listTrips(w http.ResponseWriter, r *http.Request) {
	writeTagged(w, r, h.Trips.List())
}

func (h *Handlers) currentTrip(w http.ResponseWriter, r *http.Request) {
	t, ok := h.State.Current()
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "no current trip")
		return
	}
	writeTagged(w, r, t)
}

func (h *Handlers) getTrip(w http.ResponseWriter, r *http.Request) {
	t, err := h.Trips.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeTagged(w, r, t)
}

func (h *Handlers) tripDays(w http.ResponseWriter, r *http.Request) {
	days, err := h.Trips.Days(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeTagged(w, r, days)
}

func (h *Handlers) selectTrip(w http.ResponseWriter, r *http.Request) {
	t, err := h.Trips.Select(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) deleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := h.Trips.DeleteTrip(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) renameTrip(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	ctx := withText(r.Context(), body.Title)
	t, err := h.Trips.RenameTrip(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) reorder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
		Day *int     `json:"day,omitempty"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	var (
		t   domain.Trip
		err error
	)
	if body.Day != nil {
		t, err = h.Trips.ReorderDay(r.Context(), chi.URLParam(r, "id"), *body.Day, body.IDs)
	} else {
		t, err = h.Trips.ReorderPoints(r.Context(), chi.URLParam(r, "id"), body.IDs)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) addPoint(w http.ResponseWriter, r *http.Request) {
	var np app.NewPoint
	if err := decode(r, &np); err != nil {
		writeError(w, r, err)
		return
	}
	t, p, err := h.Trips.AddPoint(r.Context(), chi.URLParam(r, "id"), np)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"trip": t, "point": p})
}

func (h *Handlers) editPoint(w http.ResponseWriter, r *http.Request) {
	var u app.PointUpdate
	if err := decode(r, &u); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.Trips.EditPoint(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "pid"), u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) deletePoint(w http.ResponseWriter, r *http.Request) {
	t, err := h.Trips.DeletePoint(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) togglePoint(w http.ResponseWriter, r *http.Request) {
	t, err := h.Trips.ToggleComplete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) addAccommodation(w http.ResponseWriter, r *http.Request) {
	var a domain.Accommodation
	if err := decode(r, &a); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.Trips.AddAccommodation(r.Context(), chi.URLParam(r, "id"), a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handlers) deleteAccommodation(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid index", "idx must be a number")
		return
	}
	t, err := h.Trips.DeleteAccommodation(r.Context(), chi.URLParam(r, "id"), idx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

/********** debug store **********/

func (h *Handlers) dumpStore(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handlers) clearStore(w http.ResponseWriter, r *http.Request) {
	if err := h.Trips.ClearAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) reloadStore(w http.ResponseWriter, r *http.Request) {
	n := h.Trips.Load(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"trips": n})
}
