package main

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"trip_planner/internal/app"
	"trip_planner/internal/domain"
)

type session struct {
	con    *console
	st     *app.AppState
	wizard *app.Wizard
	trips  *app.TripService
}

// plan runs the wizard until it is idle again (published, saved or abandoned).
func (s *session) plan(ctx context.Context) error {
	for {
		step := s.st.Step()
		if step == app.StepIdle {
			return nil
		}
		s.con.printf("\n== step %s ==\n", step)

		var err error
		switch step {
		case app.StepDestination:
			err = s.destination(ctx)
		case app.StepDates:
			err = s.dates(ctx)
		case app.StepCompanion:
			err = s.simple(ctx, "Travelling with (solo, couple, family, friends)", s.st.Draft().Metadata.CompanionType, s.wizard.SetCompanion)
		case app.StepPace:
			err = s.simple(ctx, "Pace (relaxed, normal, tight)", string(s.st.Draft().Metadata.Pace), s.wizard.SetPace)
		case app.StepAttractions:
			err = s.attractions(ctx)
		case app.StepSelect:
			err = s.selectPlaces(ctx)
		case app.StepReview:
			err = s.review(ctx)
		case app.StepAccommodation:
			err = s.accommodation(ctx)
		case app.StepPreview:
			err = s.preview(ctx)
		}
		if err != nil {
			if isFatal(err) {
				return err
			}
			s.con.printf("! %v\n", err)
		}
	}
}

func isFatal(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, errEndOfInput)
}

// navigate handles the commands every step understands. handled is false for
// anything else.
func (s *session) navigate(ctx context.Context, cmd string) (handled bool, err error) {
	switch cmd {
	case "b", "back":
		return true, s.wizard.Back()
	case "s", "save":
		return true, s.wizard.SaveAndExit(ctx)
	case "q", "quit":
		return true, s.wizard.Abandon(ctx)
	}
	return false, nil
}

func (s *session) destination(ctx context.Context) error {
	m := s.st.Draft().Metadata
	dest, err := s.prompt(ctx, "Destination", m.Destination)
	if err != nil {
		return err
	}
	if handled, err := s.navigate(ctx, dest); handled {
		return err
	}
	if err := s.wizard.SetDestination(dest); err != nil {
		return err
	}
	title, err := s.prompt(ctx, "Trip title (optional)", m.Title)
	if err != nil {
		return err
	}
	if err := s.wizard.SetTitle(title); err != nil {
		return err
	}
	return s.wizard.Next()
}

func (s *session) dates(ctx context.Context) error {
	m := s.st.Draft().Metadata
	start, err := s.prompt(ctx, "Start date (YYYY-MM-DD)", m.StartDate)
	if err != nil {
		return err
	}
	if handled, err := s.navigate(ctx, start); handled {
		return err
	}
	end, err := s.prompt(ctx, "End date (YYYY-MM-DD)", m.EndDate)
	if err != nil {
		return err
	}
	if err := s.wizard.SetDates(start, end); err != nil {
		return err
	}
	return s.wizard.Next()
}

func (s *session) simple(ctx context.Context, label, def string, set func(string) error) error {
	v, err := s.prompt(ctx, label, def)
	if err != nil {
		return err
	}
	if handled, err := s.navigate(ctx, v); handled {
		return err
	}
	if err := set(v); err != nil {
		return err
	}
	return s.wizard.Next()
}

func (s *session) attractions(ctx context.Context) error {
	s.con.printf("Looking for places in %s...\n", s.st.Draft().Metadata.Destination)
	if _, err := s.wizard.FetchAttractions(ctx); err != nil {
		s.con.printf("! suggestions are unavailable right now; add places by hand with '+ name'\n")
	}
	return s.wizard.Next()
}

func (s *session) selectPlaces(ctx context.Context) error {
	d := s.st.Draft()
	for i, c := range d.Candidates {
		mark := " "
		if d.IsSelected(c.ID) {
			mark = "x"
		}
		s.con.printf("%2d [%s] %s (%s) %s\n", i+1, mark, c.Name, c.Category, c.Description)
	}
	cmd, err := s.prompt(ctx, "Numbers to toggle, '+ name' to add, r to refetch, n next, b back, s save", "")
	if err != nil {
		return err
	}
	switch {
	case cmd == "n" || cmd == "next":
		return s.wizard.Next()
	case cmd == "r":
		_, err := s.wizard.FetchAttractions(ctx)
		return err
	case strings.HasPrefix(cmd, "+"):
		_, err := s.wizard.AddCustomCandidate(strings.TrimSpace(cmd[1:]), "")
		return err
	}
	if handled, err := s.navigate(ctx, cmd); handled {
		return err
	}
	for _, f := range strings.FieldsFunc(cmd, func(r rune) bool { return r == ',' || r == ' ' }) {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > len(d.Candidates) {
			s.con.printf("! %q is not a place number\n", f)
			continue
		}
		if _, err := s.wizard.ToggleSelection(d.Candidates[n-1].ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) review(ctx context.Context) error {
	d := s.st.Draft()
	sel := d.Selected()
	for i, c := range sel {
		s.con.printf("%2d %s - %s\n", i+1, c.Name, c.Description)
	}
	if rv, err := s.wizard.FinalReview(); err == nil && rv.Days > 0 {
		s.con.printf("%d places over %d days: %s (recommended %d-%d)\n",
			rv.SelectedCount, rv.Days, rv.Pacing.Status, rv.Pacing.RecommendedRange[0], rv.Pacing.RecommendedRange[1])
	}
	cmd, err := s.prompt(ctx, "e <n> to rename, n to add accommodations, b back, s save", "")
	if err != nil {
		return err
	}
	if strings.HasPrefix(cmd, "e ") {
		n, err := strconv.Atoi(strings.TrimSpace(cmd[2:]))
		if err != nil || n < 1 || n > len(sel) {
			return errors.New("no such place")
		}
		name, err := s.prompt(ctx, "Name", sel[n-1].Name)
		if err != nil {
			return err
		}
		desc, err := s.prompt(ctx, "Description", sel[n-1].Description)
		if err != nil {
			return err
		}
		return s.wizard.UpdateCandidate(sel[n-1].ID, name, desc)
	}
	if cmd == "n" || cmd == "next" {
		return s.wizard.Next()
	}
	_, err = s.navigate(ctx, cmd)
	return err
}

func (s *session) accommodation(ctx context.Context) error {
	d := s.st.Draft()
	if len(d.Hotels) == 0 {
		if _, err := s.wizard.FetchHotels(ctx); err != nil {
			s.con.printf("! hotel suggestions are unavailable right now\n")
		}
		d = s.st.Draft()
	}
	for i, h := range d.Hotels {
		s.con.printf("  h%d %s - %s\n", i+1, h.Name, h.Description)
	}
	for i, a := range d.Metadata.Accommodations {
		s.con.printf("  #%d %s %s~%s\n", i, a.Name, a.StartDate, a.EndDate)
	}
	if rv, err := s.wizard.FinalReview(); err == nil {
		for _, o := range rv.Overlaps {
			s.con.printf("  note: stays #%d and #%d overlap\n", o.First, o.Second)
		}
	}

	cmd, err := s.prompt(ctx, "h<n> accept hotel, a add your own, r<n> remove, g generate plan, b back, s save", "")
	if err != nil {
		return err
	}
	switch {
	case strings.HasPrefix(cmd, "h"):
		n, err := strconv.Atoi(cmd[1:])
		if err != nil || n < 1 || n > len(d.Hotels) {
			return errors.New("no such hotel")
		}
		_, err = s.wizard.AcceptHotel(d.Hotels[n-1].Name, "", "")
		return err
	case cmd == "a":
		name, err := s.prompt(ctx, "Name", "")
		if err != nil {
			return err
		}
		start, err := s.prompt(ctx, "Check-in", d.Metadata.StartDate)
		if err != nil {
			return err
		}
		end, err := s.prompt(ctx, "Check-out", d.Metadata.EndDate)
		if err != nil {
			return err
		}
		return s.wizard.AddAccommodation(domain.Accommodation{Name: name, StartDate: start, EndDate: end})
	case strings.HasPrefix(cmd, "r"):
		n, err := strconv.Atoi(cmd[1:])
		if err != nil {
			return errors.New("usage: r<index>")
		}
		return s.wizard.RemoveAccommodation(ctx, n)
	case cmd == "g":
		req, err := s.prompt(ctx, "Anything special? (optional)", "")
		if err != nil {
			return err
		}
		s.con.printf("Building your plan...\n")
		_, err = s.wizard.ConfirmFinalReview(ctx, req)
		return err
	}
	_, err = s.navigate(ctx, cmd)
	return err
}

func (s *session) preview(ctx context.Context) error {
	for _, p := range s.st.Preview() {
		s.con.printf("  day %d  %-12s %s\n", p.Day, p.Category, p.Name)
	}
	cmd, err := s.prompt(ctx, "p publish, b back, s save", "p")
	if err != nil {
		return err
	}
	if cmd == "p" {
		t, err := s.wizard.Publish(ctx)
		if err != nil {
			return err
		}
		s.con.printf("Published %q (%s) with %d points.\n", t.Metadata.Title, t.ID, len(t.Points))
		return nil
	}
	_, err = s.navigate(ctx, cmd)
	return err
}

func (s *session) prompt(ctx context.Context, label, def string) (string, error) {
	v, err := s.con.ask(ctx, label, def)
	if err != nil {
		return "", errEndOfInput
	}
	return strings.TrimSpace(v), nil
}
