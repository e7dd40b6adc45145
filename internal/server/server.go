// Package server exposes one view of the tracker over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/Tiliavir/field-day-tracker/internal/app"
	"github.com/Tiliavir/field-day-tracker/internal/geo"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

// Server holds the handlers of the HTTP view.
type Server struct {
	app *app.App
	log *slog.Logger
}

// NewRouter returns the routes of the HTTP view over a.
func NewRouter(a *app.App, log *slog.Logger) *mux.Router {
	s := &Server{app: a, log: log}
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.health).Methods("GET")
	r.HandleFunc("/status", s.status).Methods("GET")
	r.HandleFunc("/summary", s.summary).Methods("GET")
	r.HandleFunc("/daylog", s.daylog).Methods("GET")
	r.HandleFunc("/day/start", s.startDay).Methods("POST")
	r.HandleFunc("/day/end", s.endDay).Methods("POST")
	r.HandleFunc("/activity/{name}", s.switchActivity).Methods("POST")
	r.HandleFunc("/items", s.addItem).Methods("POST")
	r.HandleFunc("/trips/start", s.startTrip).Methods("POST")
	r.HandleFunc("/trips/arrive", s.arrive).Methods("POST")
	r.HandleFunc("/users/current", s.switchUser).Methods("POST")

	return r
}

// Run serves the view on addr until ctx is done, reloading state that
// other views write every second.
func Run(ctx context.Context, a *app.App, addr string, accessLog io.Writer, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.LoggingHandler(accessLog, NewRouter(a, log)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go a.Watch(ctx, time.Second, nil)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info("http view listening", slog.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads an optional JSON body into v.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// roundLegs returns a copy of legs with display distances.
func roundLegs(legs []model.TripLeg) []model.TripLeg {
	out := make([]model.TripLeg, len(legs))
	for i, l := range legs {
		l.Km = geo.RoundKm(l.Km)
		out[i] = l
	}
	return out
}

func roundEntry(e model.DayLogEntry) model.DayLogEntry {
	e.Trips = roundLegs(e.Trips)
	return e
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status is the live state of the view.
type Status struct {
	User                  model.User       `json:"user"`
	Project               string           `json:"project"`
	Running               bool             `json:"running"`
	CurrentActivity       string           `json:"currentActivity"`
	LastNonTravelActivity string           `json:"lastNonTravelActivity"`
	TotalMs               int64            `json:"totalMs"`
	Total                 string           `json:"total"`
	PerActivityMs         map[string]int64 `json:"perActivityMs"`
	ActiveTrip            *model.TripLeg   `json:"activeTrip"`
	ActiveTripMs          int64            `json:"activeTripMs"`
	Legs                  []model.TripLeg  `json:"legs"`
	Km                    float64          `json:"km"`
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	var st Status
	s.app.View(func() {
		a := s.app
		state := a.Activity.State()
		st = Status{
			User:                  a.User(),
			Project:               a.Day.Project(),
			Running:               state.Running,
			CurrentActivity:       state.CurrentActivity,
			LastNonTravelActivity: state.LastNonTravelActivity,
			TotalMs:               a.Activity.TotalElapsed(),
			PerActivityMs:         map[string]int64{},
			ActiveTripMs:          a.Trips.ActiveElapsed(),
			Legs:                  roundLegs(a.Trips.Legs()),
			Km:                    geo.RoundKm(a.Trips.TotalKm()),
		}
		st.Total = timecalc.FormatClock(st.TotalMs)
		for _, name := range a.Activity.Activities() {
			st.PerActivityMs[name] = a.Activity.Elapsed(name)
		}
		if leg, ok := a.Trips.Active(); ok {
			st.ActiveTrip = &leg
		}
	})
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) summary(w http.ResponseWriter, _ *http.Request) {
	var sum model.DaySummary
	s.app.View(func() { sum = s.app.Day.Summary() })
	sum.Trips = roundLegs(sum.Trips)
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) daylog(w http.ResponseWriter, _ *http.Request) {
	var entries []model.DayLogEntry
	s.app.View(func() { entries = s.app.Day.Log().Entries() })
	for i := range entries {
		entries[i] = roundEntry(entries[i])
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) startDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Activity string `json:"activity"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	var (
		ok    bool
		state model.DayState
	)
	s.app.Do(func() error {
		if req.Activity != "" && !s.app.Activity.SetCurrent(req.Activity) {
			return nil
		}
		ok = s.app.Activity.StartDay()
		state = s.app.Activity.State()
		return nil
	})
	if !ok {
		writeError(w, http.StatusConflict, "day already running or unknown activity")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) switchActivity(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var (
		known, running, changed, travel bool
		state                           model.DayState
	)
	s.app.Do(func() error {
		unsub := s.app.Bus.OnTravelSelected(func() { travel = true })
		defer unsub()
		known = s.app.Activity.Known(name)
		running = s.app.Activity.Running()
		changed = s.app.Activity.SwitchActivity(name)
		state = s.app.Activity.State()
		return nil
	})
	switch {
	case !known:
		writeError(w, http.StatusNotFound, "unknown activity "+name)
	case !running:
		writeError(w, http.StatusConflict, "day not started")
	default:
		// tripPrompt asks the client for the trip's origin.
		writeJSON(w, http.StatusOK, map[string]any{"changed": changed, "tripPrompt": travel, "state": state})
	}
}

type itemRequest struct {
	Activity string `json:"activity"`
	model.ItemInput
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	var (
		item model.SplitItem
		ok   bool
	)
	s.app.Do(func() error {
		if req.Activity == "" || req.Activity == s.app.Activity.Current() {
			item, ok = s.app.Activity.AddSplitItem(req.ItemInput)
		} else {
			item, ok = s.app.Activity.AddItemTo(req.Activity, req.ItemInput)
		}
		return nil
	})
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "item rejected: needs a title, a running day and a positive duration")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) startTrip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"from"`
	}
	if err := decode(r, &req); err != nil || req.From == "" {
		writeError(w, http.StatusBadRequest, "from is required")
		return
	}
	var (
		leg model.TripLeg
		ok  bool
	)
	s.app.Do(func() error {
		label, coords := s.app.Locations.Resolve(r.Context(), req.From)
		leg, ok = s.app.Trips.StartTrip(label, coords)
		return nil
	})
	if !ok {
		writeError(w, http.StatusConflict, "a trip is already in progress")
		return
	}
	writeJSON(w, http.StatusCreated, leg)
}

func (s *Server) arrive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To     string `json:"to"`
		Note   string `json:"note"`
		Resume bool   `json:"resume"`
	}
	if err := decode(r, &req); err != nil || req.To == "" {
		writeError(w, http.StatusBadRequest, "to is required")
		return
	}
	var (
		leg     model.TripLeg
		ok      bool
		offered string
	)
	s.app.Do(func() error {
		s.app.Activity.OnResumeOffer(func(activity string) bool {
			offered = activity
			return req.Resume
		})
		defer s.app.Activity.OnResumeOffer(nil)
		label, coords := s.app.Locations.Resolve(r.Context(), req.To)
		leg, ok = s.app.Trips.Arrive(label, coords, req.Note)
		return nil
	})
	if !ok {
		writeError(w, http.StatusConflict, "no active trip")
		return
	}
	leg.Km = geo.RoundKm(leg.Km)
	writeJSON(w, http.StatusOK, map[string]any{
		"leg":           leg,
		"resumeOffered": offered,
		"resumed":       offered != "" && req.Resume,
	})
}

func (s *Server) endDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Project string `json:"project"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	var entry model.DayLogEntry
	err := s.app.Do(func() error {
		var err error
		entry, err = s.app.Day.EndDay(r.Context(), req.Project)
		return err
	})
	if err != nil {
		s.log.Error("ending day failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "could not write day log")
		return
	}
	writeJSON(w, http.StatusCreated, roundEntry(entry))
}

func (s *Server) switchUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(r, &req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := s.app.SwitchUser(req.ID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.app.User())
}
