package daylog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Tiliavir/field-day-tracker/internal/bus"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/storage"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

// LegSource provides today's completed trip legs.
type LegSource interface {
	Legs() []model.TripLeg
}

// ReceiptSource provides references to receipts created on a day.
type ReceiptSource interface {
	CreatedOn(t time.Time) []model.ReceiptRef
}

// Archiver copies closed days somewhere outside the local store.
type Archiver interface {
	Archive(ctx context.Context, e model.DayLogEntry) error
}

// Options configures an Orchestrator.
type Options struct {
	Cap            int
	DefaultProject string
	Archiver       Archiver
	Now            func() time.Time
	Log            *slog.Logger
}

// Orchestrator closes the day: it freezes the activity ledger through
// the bus, gathers trips and receipts, writes the day log and finally
// broadcasts endDay.
type Orchestrator struct {
	store    storage.Store
	ns       storage.Namespace
	bus      *bus.Bus
	trips    LegSource
	receipts ReceiptSource
	opts     Options
	unsubs   []bus.Unsubscribe
}

// New returns an Orchestrator bound to ns.
func New(s storage.Store, ns storage.Namespace, b *bus.Bus, trips LegSource, receipts ReceiptSource, opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	o := &Orchestrator{store: s, ns: ns, bus: b, trips: trips, receipts: receipts, opts: opts}
	o.unsubs = []bus.Unsubscribe{
		b.OnUserChanged(func(id string) { o.ns = storage.Namespace{Prefix: o.ns.Prefix, UserID: id} }),
	}
	return o
}

// Close removes the bus subscriptions.
func (o *Orchestrator) Close() {
	for _, u := range o.unsubs {
		u()
	}
	o.unsubs = nil
}

// Log returns the day log of the current user.
func (o *Orchestrator) Log() *Log { return NewLog(o.store, o.ns, o.opts.Cap, o.opts.Log) }

// Project returns the project the day is booked on.
func (o *Orchestrator) Project() string {
	p := storage.Load(o.store, o.ns.Key(storage.ProjectCurrent), "", o.opts.Log)
	if p == "" {
		return o.opts.DefaultProject
	}
	return p
}

// SetProject remembers the current project.
func (o *Orchestrator) SetProject(p string) error {
	p = strings.TrimSpace(p)
	if p == "" {
		return fmt.Errorf("project name is empty")
	}
	return storage.Save(o.store, o.ns.Key(storage.ProjectCurrent), p)
}

// Summary returns the day so far without ending it.
func (o *Orchestrator) Summary() model.DaySummary {
	snap, _ := o.bus.RequestSummary()
	return model.DaySummary{
		TotalMs:     snap.TotalMs,
		PerActivity: snap.PerActivity,
		Trips:       o.legs(),
		Receipts:    o.refs(),
	}
}

func (o *Orchestrator) legs() []model.TripLeg {
	if o.trips == nil {
		return []model.TripLeg{}
	}
	return o.trips.Legs()
}

func (o *Orchestrator) refs() []model.ReceiptRef {
	if o.receipts == nil {
		return []model.ReceiptRef{}
	}
	return o.receipts.CreatedOn(o.opts.Now())
}

// EndDay writes the day log entry for project (the current project when
// empty) and then broadcasts endDay so every ledger resets. When the log
// cannot be written nothing is reset.
func (o *Orchestrator) EndDay(ctx context.Context, project string) (model.DayLogEntry, error) {
	if project = strings.TrimSpace(project); project == "" {
		project = o.Project()
	}
	sum := o.Summary()
	now := o.opts.Now()
	entry := model.DayLogEntry{
		ID:          timecalc.GenerateID(now),
		Date:        timecalc.DateKey(now),
		Project:     project,
		User:        o.ns.UserID,
		TotalMs:     sum.TotalMs,
		PerActivity: sum.PerActivity,
		Trips:       sum.Trips,
		Receipts:    sum.Receipts,
		CreatedAt:   now,
	}
	if err := o.Log().Prepend(entry); err != nil {
		return model.DayLogEntry{}, err
	}
	o.opts.Log.Info("day closed",
		slog.String("project", project),
		slog.String("total", timecalc.FormatMs(entry.TotalMs)),
		slog.Int("trips", len(entry.Trips)),
	)

	if o.opts.Archiver != nil {
		if err := o.opts.Archiver.Archive(ctx, entry); err != nil {
			o.opts.Log.Warn("archiving day failed", slog.String("id", entry.ID), slog.String("error", err.Error()))
		}
	}

	o.bus.EndDay()
	return entry, nil
}
