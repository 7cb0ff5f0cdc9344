// Command planner is the terminal front end: an interactive trip wizard and
// itinerary editor, plus export/import of the saved trips.
//
//	planner                 interactive session
//	planner list            print saved trips
//	planner export [file]   write all trips as JSON (stdout by default)
//	planner import <file>   replace saved trips from an export
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/app"
	"trip_planner/internal/bootstrap"
	"trip_planner/internal/domain"
	"trip_planner/internal/shared"
)

var errEndOfInput = errors.New("end of input")

func main() {
	cfg := shared.Load()

	// stdout belongs to the prompts
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(cliLevel(cfg.LogLevel)).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store setup failed")
	}

	if err := run(ctx, deps, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "planner:", err)
		deps.Close()
		os.Exit(1)
	}
	deps.Close()
}

// cliLevel keeps info-level chatter out of the terminal unless asked for.
func cliLevel(level string) zerolog.Level {
	if level == "" || level == "info" {
		return zerolog.WarnLevel
	}
	return observability.ParseLevel(level)
}

func run(ctx context.Context, deps *bootstrap.Deps, args []string, in io.Reader, out io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "":
		return interactive(ctx, deps, in, out)

	case "list":
		for _, t := range deps.Store.LoadTrips(ctx) {
			fmt.Fprintf(out, "%s\t%s\t%s..%s\t%d points\t%.0f%%\n",
				t.ID, t.Metadata.Title, t.Metadata.StartDate, t.Metadata.EndDate, len(t.Points), t.Progress*100)
		}
		return nil

	case "export":
		if len(args) < 2 || args[1] == "-" {
			return deps.Store.Export(ctx, out)
		}
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		if err := deps.Store.Export(ctx, f); err != nil {
			f.Close()
			return err
		}
		return f.Close()

	case "import":
		if len(args) < 2 {
			return errors.New("usage: planner import <file>")
		}
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		trips, err := deps.Store.Import(ctx, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %d trips\n", len(trips))
		return nil
	}
	return fmt.Errorf("unknown command %q (want list, export or import)", cmd)
}

func interactive(ctx context.Context, deps *bootstrap.Deps, in io.Reader, out io.Writer) error {
	con := newConsole(in, out)
	st := app.NewAppState()
	s := &session{
		con:    con,
		st:     st,
		trips:  app.NewTripService(st, deps.Store, con),
		wizard: app.NewWizard(st, deps.Store, deps.Rec, deps.Planner, con),
	}
	s.trips.Load(ctx)

	for {
		con.printf("\n[n] new trip  [r] resume draft  [l] list  [v <n>] view  [t <n> <point>] tick  [x <n>] rename  [d <n>] delete  [q] quit\n")
		cmd, err := s.prompt(ctx, ">", "")
		if err != nil {
			return nil
		}
		if err := s.menu(ctx, cmd); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			if isFatal(err) {
				return nil
			}
			con.printf("! %v\n", err)
		}
	}
}

var errQuit = errors.New("quit")

func (s *session) menu(ctx context.Context, line string) error {
	f := strings.Fields(line)
	if len(f) == 0 {
		return nil
	}
	switch f[0] {
	case "q", "quit":
		return errQuit
	case "n", "new":
		if err := s.wizard.Begin(ctx); err != nil {
			return err
		}
		return s.plan(ctx)
	case "r", "resume":
		found, err := s.wizard.Resume(ctx)
		if err != nil {
			return err
		}
		if !found {
			return errors.New("there is no saved draft")
		}
		return s.plan(ctx)
	case "l", "list":
		cur, _ := s.st.Current()
		for i, t := range s.trips.List() {
			mark := " "
			if t.ID == cur.ID {
				mark = "*"
			}
			s.con.printf("%s%2d %s (%s) %.0f%%\n", mark, i+1, t.Metadata.Title, t.Metadata.Destination, t.Progress*100)
		}
		return nil
	}

	if len(f) < 2 {
		return fmt.Errorf("%s needs a trip number", f[0])
	}
	t, err := s.tripAt(f[1])
	if err != nil {
		return err
	}
	switch f[0] {
	case "v", "view":
		if _, err := s.trips.Select(ctx, t.ID); err != nil {
			return err
		}
		groups, err := s.trips.Days(t.ID)
		if err != nil {
			return err
		}
		for _, g := range groups {
			s.con.printf("day %d\n", g.Day)
			for _, p := range g.Points {
				done := " "
				if p.Completed {
					done = "x"
				}
				s.con.printf("  [%s] %-10s %s\n", done, p.ID, p.Name)
			}
		}
		return nil
	case "t", "tick":
		if len(f) < 3 {
			return errors.New("usage: t <trip> <point id>")
		}
		_, err := s.trips.ToggleComplete(ctx, t.ID, f[2])
		return err
	case "x", "rename":
		_, err := s.trips.RenameTrip(ctx, t.ID)
		return err
	case "d", "delete":
		return s.trips.DeleteTrip(ctx, t.ID)
	}
	return fmt.Errorf("unknown command %q", f[0])
}

func (s *session) tripAt(arg string) (domain.Trip, error) {
	n, err := strconv.Atoi(arg)
	trips := s.trips.List()
	if err != nil || n < 1 || n > len(trips) {
		return domain.Trip{}, fmt.Errorf("no trip %s", arg)
	}
	return trips[n-1], nil
}
