// Package trip keeps the active trip and today's completed legs.
package trip

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/field-day-tracker/internal/bus"
	"github.com/Tiliavir/field-day-tracker/internal/geo"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/storage"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

// Options configures a Ledger.
type Options struct {
	Policy geo.Policy
	Now    func() time.Time
	Log    *slog.Logger
}

// Ledger is the trip ledger of one user. Like the activity ledger it is
// driven from a single event turn and is not safe for concurrent use.
type Ledger struct {
	store  storage.Store
	ns     storage.Namespace
	policy geo.Policy
	now    func() time.Time
	log    *slog.Logger

	active *model.TripLeg
	legs   []model.TripLeg

	bus    *bus.Bus
	unsubs []bus.Unsubscribe
}

// New loads the trip ledger of namespace ns from s.
func New(s storage.Store, ns storage.Namespace, opts Options) *Ledger {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	l := &Ledger{store: s, ns: ns, policy: opts.Policy, now: opts.Now, log: opts.Log}
	l.Reload()
	return l
}

// Reload re-reads the active trip and today's legs from the store.
func (l *Ledger) Reload() {
	l.active = storage.Load[*model.TripLeg](l.store, l.ns.Key(storage.ActiveTrip), nil, l.log)
	l.legs = storage.Load(l.store, l.ns.Key(storage.TripsToday), []model.TripLeg{}, l.log)
	if l.active != nil && !l.active.Active() {
		l.log.Warn("stored active trip already ended, dropping it", slog.String("id", l.active.ID))
		l.active = nil
	}
}

// SwitchUser rebinds the ledger to another user's namespace and reloads.
func (l *Ledger) SwitchUser(userID string) {
	l.ns = storage.Namespace{Prefix: l.ns.Prefix, UserID: userID}
	l.Reload()
}

// Keys returns the storage keys owned by the ledger.
func (l *Ledger) Keys() []string {
	return []string{l.ns.Key(storage.ActiveTrip), l.ns.Key(storage.TripsToday)}
}

// Attach subscribes the ledger to b; trips it starts and ends are
// announced there.
func (l *Ledger) Attach(b *bus.Bus) {
	l.Detach()
	l.bus = b
	l.unsubs = []bus.Unsubscribe{
		b.OnEndDay(l.EndDay),
		b.OnUserChanged(l.SwitchUser),
	}
}

// Detach removes every subscription made by Attach.
func (l *Ledger) Detach() {
	for _, u := range l.unsubs {
		u()
	}
	l.unsubs = nil
	l.bus = nil
}

// Active returns the trip in progress.
func (l *Ledger) Active() (model.TripLeg, bool) {
	if l.active == nil {
		return model.TripLeg{}, false
	}
	return *l.active, true
}

// Legs returns today's completed legs in arrival order.
func (l *Ledger) Legs() []model.TripLeg {
	return append([]model.TripLeg{}, l.legs...)
}

// ActiveElapsed returns the milliseconds since the active trip started,
// or 0 without one.
func (l *Ledger) ActiveElapsed() int64 {
	if l.active == nil {
		return 0
	}
	start := l.active.StartTime
	return timecalc.ClockElapsed(l.now(), model.Clock{StartAt: &start})
}

// TotalKm sums the distance of today's legs.
func (l *Ledger) TotalKm() float64 {
	var km float64
	for _, leg := range l.legs {
		km += leg.Km
	}
	return km
}

// StartTrip opens a new leg from startName. coords may be nil when the
// location could not be resolved. Rejected while a trip is in progress.
func (l *Ledger) StartTrip(startName string, coords *model.Coords) (model.TripLeg, bool) {
	startName = strings.TrimSpace(startName)
	if l.active != nil {
		l.log.Debug("trip ledger rejected StartTrip", slog.String("reason", "trip in progress"), slog.String("active", l.active.StartName))
		return model.TripLeg{}, false
	}
	if startName == "" {
		l.log.Debug("trip ledger rejected StartTrip", slog.String("reason", "missing start name"))
		return model.TripLeg{}, false
	}
	now := l.now()
	leg := model.TripLeg{
		ID:          uuid.NewString(),
		StartName:   startName,
		StartTime:   now,
		StartCoords: coords,
		Date:        timecalc.DateKey(now),
	}
	l.active = &leg
	l.save(storage.ActiveTrip, l.active)
	l.log.Info("trip started", slog.String("from", startName))
	if l.bus != nil {
		l.bus.TripStarted(leg)
	}
	return leg, true
}

// Arrive closes the active leg at endName, computes its distance and
// appends it to today's legs. It does not start a follow-up leg.
func (l *Ledger) Arrive(endName string, coords *model.Coords, note string) (model.TripLeg, bool) {
	endName = strings.TrimSpace(endName)
	if l.active == nil {
		l.log.Debug("trip ledger rejected Arrive", slog.String("reason", "no active trip"))
		return model.TripLeg{}, false
	}
	if endName == "" {
		l.log.Debug("trip ledger rejected Arrive", slog.String("reason", "missing end name"))
		return model.TripLeg{}, false
	}
	now := l.now()
	leg := *l.active
	leg.EndName = endName
	leg.EndTime = &now
	leg.EndCoords = coords
	leg.Note = strings.TrimSpace(note)
	leg.Km = l.policy.Distance(leg.StartCoords, leg.EndCoords)

	l.legs = append(l.legs, leg)
	l.save(storage.TripsToday, l.legs)
	l.active = nil
	l.drop(storage.ActiveTrip)
	l.log.Info("trip arrived", slog.String("to", endName), slog.Float64("km", leg.Km))
	if l.bus != nil {
		l.bus.Arrived(leg)
	}
	return leg, true
}

// EndDay discards the active trip and today's legs.
func (l *Ledger) EndDay() {
	l.active = nil
	l.legs = []model.TripLeg{}
	l.drop(storage.ActiveTrip)
	l.drop(storage.TripsToday)
}

func (l *Ledger) save(logical string, v any) {
	if err := storage.Save(l.store, l.ns.Key(logical), v); err != nil {
		l.log.Error("saving trips failed", slog.String("key", logical), slog.String("error", err.Error()))
	}
}

func (l *Ledger) drop(logical string) {
	if err := l.store.Delete(l.ns.Key(logical)); err != nil {
		l.log.Error("clearing trips failed", slog.String("key", logical), slog.String("error", err.Error()))
	}
}
