// Package app wires the store, the bus and every ledger of one view.
//
// A view (the CLI, the HTTP server, the watch screen) owns one App. All
// mutations run through Do, which is the single event turn: the handlers
// of one signal finish before the next operation starts, and the keys the
// view wrote are marked so its own watcher does not reload them.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/Tiliavir/field-day-tracker/internal/activity"
	"github.com/Tiliavir/field-day-tracker/internal/archive"
	"github.com/Tiliavir/field-day-tracker/internal/bus"
	"github.com/Tiliavir/field-day-tracker/internal/config"
	"github.com/Tiliavir/field-day-tracker/internal/daylog"
	"github.com/Tiliavir/field-day-tracker/internal/geo"
	"github.com/Tiliavir/field-day-tracker/internal/location"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/receipts"
	"github.com/Tiliavir/field-day-tracker/internal/storage"
	"github.com/Tiliavir/field-day-tracker/internal/trip"
)

// Options configures Open.
type Options struct {
	// Base is the fdt directory holding config.json.
	Base string
	// UserID selects a user for this process without changing the
	// persisted current user. Empty uses the current user.
	UserID string
	Now    func() time.Time
	Log    *slog.Logger
	GPS    location.GPSFunc
	// Config overrides config.Load, for tests.
	Config *config.Config
}

// App is one view onto the tracker.
type App struct {
	Config    config.Config
	Store     storage.Store
	Bus       *bus.Bus
	Activity  *activity.Ledger
	Trips     *trip.Ledger
	Receipts  *receipts.Book
	Day       *daylog.Orchestrator
	Locations *location.Resolver
	Users     *storage.Registry

	log     *slog.Logger
	watcher *storage.Watcher
	archive *archive.Client

	mu sync.Mutex
	// user is written under both mu and userMu, so User can be called
	// from inside an event turn.
	userMu sync.RWMutex
	user   model.User
}

// Open loads configuration, opens the store and attaches every ledger to
// a fresh bus.
func Open(ctx context.Context, opts Options) (*App, error) {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	var cfg config.Config
	if opts.Config != nil {
		cfg = *opts.Config
	} else {
		c, err := config.Load(opts.Base)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	registry := storage.NewRegistry(store, opts.Log)
	users, err := registry.Init()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("initializing users: %w", err)
	}
	user := registry.Current()
	if opts.UserID != "" {
		i := slices.IndexFunc(users, func(u model.User) bool { return u.ID == opts.UserID })
		if i < 0 {
			store.Close()
			return nil, fmt.Errorf("unknown user %q", opts.UserID)
		}
		user = users[i]
	}

	a := &App{
		Config:  cfg,
		Store:   store,
		Users:   registry,
		Bus:     bus.New(opts.Log),
		log:     opts.Log,
		watcher: storage.NewWatcher(store),
		user:    user,
	}
	ns := storage.For(user.ID)

	a.Activity = activity.New(store, ns, activity.Options{
		Activities: cfg.Day.Activities,
		Default:    cfg.Day.DefaultActivity,
		Now:        opts.Now,
		Log:        opts.Log,
	})
	a.Activity.Attach(a.Bus)
	a.Trips = trip.New(store, ns, trip.Options{
		Policy: geo.Policy{RoadFactor: cfg.Trips.RoadFactor},
		Now:    opts.Now,
		Log:    opts.Log,
	})
	a.Trips.Attach(a.Bus)
	a.Receipts = receipts.NewBook(store, ns, nil, opts.Now, opts.Log)
	a.Receipts.Attach(a.Bus)

	dayOpts := daylog.Options{
		Cap:            cfg.Day.LogCap,
		DefaultProject: cfg.Day.DefaultProject,
		Now:            opts.Now,
		Log:            opts.Log,
	}
	if cfg.Archive.MySQLDSN != "" {
		client, err := archive.Open(ctx, cfg.Archive.MySQLDSN, opts.Log)
		if err != nil {
			opts.Log.Warn("archive disabled", slog.String("error", err.Error()))
		} else {
			a.archive = client
			dayOpts.Archiver = client
		}
	}
	a.Day = daylog.New(store, ns, a.Bus, a.Trips, a.Receipts, dayOpts)

	gps := opts.GPS
	if gps == nil {
		gps = location.GPSFromEnv
	}
	a.Locations, err = location.NewResolver(cfg.Trips.LocationsFile, gps, opts.Log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.watcher.Mark(a.keys()...)
	return a, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return storage.OpenSQLite(ctx, filepath.Join(cfg.Dir, "fdt.db"))
	default:
		return storage.NewFileStore(cfg.Dir)
	}
}

// Close releases the store and the archive connection.
func (a *App) Close() error {
	a.Day.Close()
	a.Activity.Detach()
	a.Trips.Detach()
	a.Receipts.Detach()
	if a.archive != nil {
		a.archive.Close()
	}
	return a.Store.Close()
}

// User returns the user this view works for.
func (a *App) User() model.User {
	a.userMu.RLock()
	defer a.userMu.RUnlock()
	return a.user
}

func (a *App) keys() []string {
	ns := storage.For(a.user.ID)
	return append(ns.Keys(), ns.Key(storage.OutlookSeen), storage.UsersKey, storage.CurrentUserKey)
}

// Do runs fn as one event turn.
func (a *App) Do(fn func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.watcher.Mark(a.keys()...)
	return fn()
}

// View runs fn under the event-turn lock without marking writes.
func (a *App) View(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn()
}

// SwitchUser makes id the current user of every view and reloads all
// ledgers from that user's namespace.
func (a *App) SwitchUser(id string) error {
	return a.Do(func() error {
		if err := a.Users.SetCurrent(id); err != nil {
			return err
		}
		a.switchTo(a.Users.Current())
		return nil
	})
}

func (a *App) switchTo(u model.User) {
	if u.ID == a.user.ID {
		return
	}
	a.log.Info("switching user", slog.String("user", u.ID))
	a.userMu.Lock()
	a.user = u
	a.userMu.Unlock()
	a.Bus.UserChanged(u.ID)
}

// Watch polls the store every interval and reloads state written by other
// views until ctx is done. onChange runs after every reload.
func (a *App) Watch(ctx context.Context, interval time.Duration, onChange func()) {
	keys := func() []string {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.keys()
	}
	a.watcher.Run(ctx, interval, keys, func(changed []string) {
		a.mu.Lock()
		a.reload(changed)
		a.mu.Unlock()
		if onChange != nil {
			onChange()
		}
	})
}

// Sync reloads whatever other views wrote since the last check and
// reports whether anything changed.
func (a *App) Sync() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	changed := a.watcher.Changed(a.keys()...)
	if len(changed) == 0 {
		return false
	}
	a.reload(changed)
	return true
}

// reload applies changes made elsewhere. The last write wins: in-memory
// state is replaced, never merged.
func (a *App) reload(changed []string) {
	a.log.Debug("store changed by another view", slog.Any("keys", changed))
	if slices.Contains(changed, storage.CurrentUserKey) {
		if u := a.Users.Current(); u.ID != a.user.ID {
			a.switchTo(u)
			a.watcher.Mark(a.keys()...)
			return
		}
	}
	ns := storage.For(a.user.ID)
	for _, k := range changed {
		switch k {
		case ns.Key(storage.Workday):
			a.Activity.Reload()
		case ns.Key(storage.ActiveTrip), ns.Key(storage.TripsToday):
			a.Trips.Reload()
		case ns.Key(storage.Receipts):
			a.Receipts.Reload()
		}
	}
}
