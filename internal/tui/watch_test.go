package tui_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tiliavir/field-day-tracker/internal/app"
	"github.com/Tiliavir/field-day-tracker/internal/config"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/tui"
)

func openApp(t *testing.T) *app.App {
	t.Helper()
	dir := t.TempDir()
	now := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	a, err := app.Open(context.Background(), app.Options{
		Config: &config.Config{
			Storage: config.StorageConfig{Backend: "json", Dir: dir},
			Day: config.DayConfig{
				Activities:      model.DefaultActivities,
				DefaultActivity: "Engineering",
				LogCap:          10,
				DefaultProject:  "Project A",
			},
			Trips: config.TripsConfig{RoadFactor: 1, LocationsFile: filepath.Join(dir, "locations.yaml")},
		},
		Now: func() time.Time { return now },
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func press(m tea.Model, key string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return m
}

func TestKeysDriveLedger(t *testing.T) {
	a := openApp(t)
	var m tea.Model = tui.New(a)

	if v := m.View(); !strings.Contains(v, "Day not started.") {
		t.Errorf("idle view missing hint:\n%s", v)
	}

	m = press(m, "s")
	if !a.Activity.Running() || a.Activity.Current() != "Engineering" {
		t.Fatalf("after s: running=%v current=%q", a.Activity.Running(), a.Activity.Current())
	}

	m = press(m, "4")
	if a.Activity.Current() != model.Travel {
		t.Fatalf("after 4: current = %q", a.Activity.Current())
	}
	if v := m.View(); !strings.Contains(v, "r resumes Engineering") {
		t.Errorf("travel view missing resume hint:\n%s", v)
	}

	m = press(m, "r")
	if a.Activity.Current() != "Engineering" {
		t.Errorf("after r: current = %q", a.Activity.Current())
	}

	m = press(m, "9")
	if a.Activity.Current() != "Engineering" {
		t.Errorf("out of range key switched to %q", a.Activity.Current())
	}

	m = press(m, "s")
	if v := m.View(); !strings.Contains(v, "start day: not possible now") {
		t.Errorf("second start not reported:\n%s", v)
	}
}

func TestQuit(t *testing.T) {
	m := tui.New(openApp(t))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
