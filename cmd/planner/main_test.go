package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"trip_planner/internal/bootstrap"
	"trip_planner/internal/shared"
)

func openDeps(t *testing.T) *bootstrap.Deps {
	t.Helper()
	cfg := shared.Config{StoreDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "planner.db"), CacheDriver: "none"}
	d, err := bootstrap.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestInteractive_PlanAndPublish(t *testing.T) {
	d := openDeps(t)
	in := script(
		"n",
		"Naha", "",
		"2026-11-01", "2026-11-02",
		"family",
		"relaxed",
		"+ Shuri Castle",
		"+ Makishi Market",
		"n",
		"n",
		"a", "Hotel Naha", "", "",
		"g", "",
		"p",
		"l",
		"q",
	)
	var out bytes.Buffer
	if err := run(context.Background(), d, nil, in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.Contains(out.String(), "Published \"Naha\"") {
		t.Fatalf("no publish line in output:\n%s", out.String())
	}
	trips := d.Store.LoadTrips(context.Background())
	if len(trips) != 1 {
		t.Fatalf("trips: %+v", trips)
	}
	tr := trips[0]
	if len(tr.Points) != 2 || len(tr.Metadata.Accommodations) != 1 {
		t.Fatalf("trip: %+v", tr)
	}
	if tr.Metadata.Accommodations[0].StartDate != "2026-11-01" {
		t.Fatalf("check-in should default to the trip start: %+v", tr.Metadata.Accommodations[0])
	}
	if _, ok := d.Store.LoadDraft(context.Background()); ok {
		t.Fatalf("draft should be cleared after publish")
	}
}

func TestInteractive_SaveAndResume(t *testing.T) {
	d := openDeps(t)
	var out bytes.Buffer
	if err := run(context.Background(), d, nil, script("n", "Kyoto", "", "s", "q"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	draft, ok := d.Store.LoadDraft(context.Background())
	if !ok || draft.Metadata.Destination != "Kyoto" {
		t.Fatalf("draft: %+v ok=%v", draft, ok)
	}

	out.Reset()
	// resume lands on the destination step with the saved value as the default
	if err := run(context.Background(), d, nil, script("r", "", "", "s", "q"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Destination [Kyoto]") {
		t.Fatalf("resume did not restore the destination:\n%s", out.String())
	}
}

func TestInteractive_EndOfInputExits(t *testing.T) {
	d := openDeps(t)
	var out bytes.Buffer
	if err := run(context.Background(), d, nil, script("n", "Naha"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestExportImport(t *testing.T) {
	src := openDeps(t)
	var out bytes.Buffer
	in := script("n", "Naha", "", "2026-11-01", "2026-11-01", "", "", "+ Tower", "n", "n", "g", "", "p", "q")
	if err := run(context.Background(), src, nil, in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	file := filepath.Join(t.TempDir(), "trips.json")
	if err := run(context.Background(), src, []string{"export", file}, nil, &out); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := openDeps(t)
	out.Reset()
	if err := run(context.Background(), dst, []string{"import", file}, nil, &out); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "imported 1 trips") {
		t.Fatalf("output: %s", out.String())
	}
	got := dst.Store.LoadTrips(context.Background())
	if len(got) != 1 || got[0].Points[0].Name != "Tower" {
		t.Fatalf("imported: %+v", got)
	}

	out.Reset()
	if err := run(context.Background(), dst, []string{"list"}, nil, &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "Naha") {
		t.Fatalf("list: %s", out.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	if err := run(context.Background(), openDeps(t), []string{"sync"}, nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConsole(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	c := newConsole(strings.NewReader("yes\n\nKyoto"), &out)

	if ok, err := c.Confirm(ctx, "Delete?"); err != nil || !ok {
		t.Fatalf("confirm: %v %v", ok, err)
	}
	if v, ok, _ := c.PromptText(ctx, "Title", "Naha"); !ok || v != "Naha" {
		t.Fatalf("empty answer should keep the default, got %q %v", v, ok)
	}
	if v, ok, _ := c.PromptText(ctx, "Title", ""); !ok || v != "Kyoto" {
		t.Fatalf("last line without newline: %q %v", v, ok)
	}
	if _, ok, err := c.PromptText(ctx, "Title", "x"); ok || err != nil {
		t.Fatalf("end of input should dismiss: ok=%v err=%v", ok, err)
	}
	if ok, err := c.Confirm(ctx, "Again?"); ok || err != nil {
		t.Fatalf("end of input should decline: ok=%v err=%v", ok, err)
	}
	if !strings.Contains(out.String(), "Title [Naha]: ") {
		t.Fatalf("prompt: %q", out.String())
	}
}
