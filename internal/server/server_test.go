package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/field-day-tracker/internal/app"
	"github.com/Tiliavir/field-day-tracker/internal/config"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/server"
)

type fixture struct {
	app    *app.App
	router http.Handler
	now    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	now := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	f := &fixture{now: &now}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
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
		Now: func() time.Time { return *f.now },
		Log: log,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	f.app = a
	f.router = server.NewRouter(a, log)
	return f
}

func (f *fixture) advance(d time.Duration) { *f.now = f.now.Add(d) }

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestDayOverHTTP(t *testing.T) {
	f := newFixture(t)

	if rec := f.do(t, http.MethodPost, "/day/start", `{"activity":"Research"}`); rec.Code != http.StatusOK {
		t.Fatalf("start: %d %s", rec.Code, rec.Body)
	}
	if rec := f.do(t, http.MethodPost, "/day/start", ""); rec.Code != http.StatusConflict {
		t.Fatalf("second start: %d", rec.Code)
	}

	f.advance(20 * time.Minute)
	rec := f.do(t, http.MethodPost, "/items", `{"title":"Literature","wbso":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("item: %d %s", rec.Code, rec.Body)
	}
	item := decode[model.SplitItem](t, rec)
	if item.Minutes != 20 || !item.WBSO {
		t.Errorf("item = %+v", item)
	}

	if rec := f.do(t, http.MethodPost, "/trips/start", `{"from":"Huis Daan"}`); rec.Code != http.StatusCreated {
		t.Fatalf("trip start: %d %s", rec.Code, rec.Body)
	}
	f.advance(10 * time.Minute)
	rec = f.do(t, http.MethodPost, "/trips/arrive", `{"to":"Werkplaats","resume":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("arrive: %d %s", rec.Code, rec.Body)
	}
	arrived := decode[struct {
		Leg           model.TripLeg `json:"leg"`
		ResumeOffered string        `json:"resumeOffered"`
		Resumed       bool          `json:"resumed"`
	}](t, rec)
	if arrived.Leg.Km != 2.71 || arrived.ResumeOffered != "Research" || !arrived.Resumed {
		t.Errorf("arrive = %+v", arrived)
	}

	st := decode[server.Status](t, f.do(t, http.MethodGet, "/status", ""))
	if st.CurrentActivity != "Research" || st.ActiveTrip != nil || len(st.Legs) != 1 {
		t.Fatalf("status = %+v", st)
	}
	if st.PerActivityMs["Travel"] != 600000 {
		t.Errorf("travel ms = %d", st.PerActivityMs["Travel"])
	}
	if st.Km != 2.71 || st.Legs[0].Km != 2.71 {
		t.Errorf("status km = %v, leg km = %v, want 2.71", st.Km, st.Legs[0].Km)
	}
	if stored := f.app.Trips.Legs()[0].Km; stored == 2.71 {
		t.Errorf("stored km = %v, want the unrounded distance", stored)
	}

	rec = f.do(t, http.MethodPost, "/day/end", `{"project":"Project B"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("end: %d %s", rec.Code, rec.Body)
	}
	entry := decode[model.DayLogEntry](t, rec)
	if entry.Project != "Project B" || entry.TotalMs != 1800000 || len(entry.Trips) != 1 || entry.Trips[0].Km != 2.71 {
		t.Errorf("entry = %+v", entry)
	}

	entries := decode[[]model.DayLogEntry](t, f.do(t, http.MethodGet, "/daylog", ""))
	if len(entries) != 1 || entries[0].ID != entry.ID {
		t.Errorf("daylog = %+v", entries)
	}
}

func TestRejections(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"switch before start", http.MethodPost, "/activity/Meeting", "", http.StatusConflict},
		{"unknown activity", http.MethodPost, "/activity/Golf", "", http.StatusNotFound},
		{"item while idle", http.MethodPost, "/items", `{"title":"x"}`, http.StatusUnprocessableEntity},
		{"trip without origin", http.MethodPost, "/trips/start", `{}`, http.StatusBadRequest},
		{"arrive without trip", http.MethodPost, "/trips/arrive", `{"to":"Werkplaats"}`, http.StatusConflict},
		{"bad body", http.MethodPost, "/day/start", `{`, http.StatusBadRequest},
		{"unknown user", http.MethodPost, "/users/current", `{"id":"nobody"}`, http.StatusNotFound},
		{"wrong method", http.MethodGet, "/day/end", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestSwitchUser(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/day/start", "")

	rec := f.do(t, http.MethodPost, "/users/current", `{"id":"u-rosa"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("switch: %d %s", rec.Code, rec.Body)
	}
	st := decode[server.Status](t, f.do(t, http.MethodGet, "/status", ""))
	if st.User.ID != "u-rosa" || st.Running {
		t.Errorf("status after switch = %+v", st)
	}
}

func TestManualTravelPromptsForTrip(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/day/start", "")

	rec := f.do(t, http.MethodPost, "/activity/Travel", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("switch: %d %s", rec.Code, rec.Body)
	}
	got := decode[struct {
		Changed    bool `json:"changed"`
		TripPrompt bool `json:"tripPrompt"`
	}](t, rec)
	if !got.Changed || !got.TripPrompt {
		t.Errorf("switch to Travel = %+v", got)
	}

	got = decode[struct {
		Changed    bool `json:"changed"`
		TripPrompt bool `json:"tripPrompt"`
	}](t, f.do(t, http.MethodPost, "/activity/Meeting", ""))
	if !got.Changed || got.TripPrompt {
		t.Errorf("switch to Meeting = %+v", got)
	}
}
