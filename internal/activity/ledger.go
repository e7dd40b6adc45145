// Package activity implements the workday ledger: which activity is
// running, how long each one has accumulated and the split items logged
// within them.
//
// A Ledger is not safe for concurrent use. Callers run every operation
// inside one event turn (see internal/app), which is what keeps the
// synchronous bus request/response free of races.
package activity

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/field-day-tracker/internal/bus"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/storage"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

// Research is the only activity whose items carry a meaningful WBSO flag.
const Research = "Research"

// Options configures a Ledger.
type Options struct {
	Activities []string
	Default    string
	Now        func() time.Time
	Log        *slog.Logger
}

// Ledger is the activity time ledger of one user.
type Ledger struct {
	store      storage.Store
	ns         storage.Namespace
	activities []string
	def        string
	now        func() time.Time
	log        *slog.Logger

	state  model.DayState
	offer  func(activity string) bool
	bus    *bus.Bus
	unsubs []bus.Unsubscribe
}

// New loads the ledger of namespace ns from s.
func New(s storage.Store, ns storage.Namespace, opts Options) *Ledger {
	if len(opts.Activities) == 0 {
		opts.Activities = model.DefaultActivities
	}
	if opts.Default == "" {
		opts.Default = opts.Activities[0]
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	l := &Ledger{
		store:      s,
		ns:         ns,
		activities: opts.Activities,
		def:        opts.Default,
		now:        opts.Now,
		log:        opts.Log,
	}
	l.Reload()
	return l
}

func (l *Ledger) blank() model.DayState {
	return model.DayState{
		CurrentActivity:       l.def,
		LastNonTravelActivity: l.def,
		PerActivity:           map[string]model.ActivitySegment{},
	}
}

// Reload drops in-memory state and reads it back from the store.
func (l *Ledger) Reload() {
	st := storage.Load(l.store, l.ns.Key(storage.Workday), l.blank(), l.log)
	if st.PerActivity == nil {
		st.PerActivity = map[string]model.ActivitySegment{}
	}
	if st.CurrentActivity == "" {
		st.CurrentActivity = l.def
	}
	l.state = st
}

// SwitchUser rebinds the ledger to another user's namespace and reloads.
func (l *Ledger) SwitchUser(userID string) {
	l.ns = storage.Namespace{Prefix: l.ns.Prefix, UserID: userID}
	l.Reload()
}

// Key returns the storage key of the ledger.
func (l *Ledger) Key() string { return l.ns.Key(storage.Workday) }

func (l *Ledger) persist() {
	if err := storage.Save(l.store, l.Key(), l.state); err != nil {
		l.log.Error("saving workday failed", slog.String("error", err.Error()))
	}
}

func (l *Ledger) reject(op, reason string, attrs ...any) {
	l.log.Debug("activity ledger rejected "+op, append([]any{slog.String("reason", reason)}, attrs...)...)
}

// Activities returns the configured activity names.
func (l *Ledger) Activities() []string { return slices.Clone(l.activities) }

// Known reports whether name is a configured activity.
func (l *Ledger) Known(name string) bool { return slices.Contains(l.activities, name) }

// State returns a deep copy of the live state.
func (l *Ledger) State() model.DayState { return l.state.Clone() }

// Running reports whether the day has been started.
func (l *Ledger) Running() bool { return l.state.Running }

// Current returns the current activity.
func (l *Ledger) Current() string { return l.state.CurrentActivity }

// OnResumeOffer installs the callback asked after an arrival whether the
// last non-travel activity should be resumed.
func (l *Ledger) OnResumeOffer(fn func(activity string) bool) { l.offer = fn }

// SetCurrent chooses the activity the next day starts with. Only valid
// while idle.
func (l *Ledger) SetCurrent(name string) bool {
	if l.state.Running {
		l.reject("SetCurrent", "day running")
		return false
	}
	if !l.Known(name) {
		l.reject("SetCurrent", "unknown activity", slog.String("activity", name))
		return false
	}
	l.state.CurrentActivity = name
	if name != model.Travel {
		l.state.LastNonTravelActivity = name
	}
	l.persist()
	return true
}

// StartDay resets every segment and starts the current activity.
// It is a no-op while the day is running.
func (l *Ledger) StartDay() bool {
	if l.state.Running {
		return false
	}
	now := l.now()
	cur, last := l.state.CurrentActivity, l.state.LastNonTravelActivity
	pending := l.state.PerActivity
	l.state = l.blank()
	// Items logged while idle (calendar imports) belong to the new day.
	for name, seg := range pending {
		if len(seg.Items) > 0 {
			l.state.PerActivity[name] = model.ActivitySegment{Items: seg.Items}
		}
	}
	if l.Known(cur) {
		l.state.CurrentActivity = cur
	}
	if l.Known(last) && last != model.Travel {
		l.state.LastNonTravelActivity = last
	}
	l.state.Running = true
	l.state.Total.StartAt = &now
	l.start(l.state.CurrentActivity, now)
	l.persist()
	l.log.Info("day started", slog.String("activity", l.state.CurrentActivity))
	return true
}

func (l *Ledger) start(name string, now time.Time) {
	seg := l.state.PerActivity[name]
	at := now
	seg.StartAt = &at
	if seg.LastMark == nil {
		mark := now
		seg.LastMark = &mark
	}
	l.state.PerActivity[name] = seg
}

func (l *Ledger) stop(name string, now time.Time) {
	seg, ok := l.state.PerActivity[name]
	if !ok || seg.StartAt == nil {
		return
	}
	seg.BaseMs = timecalc.Elapsed(now, seg)
	seg.StartAt = nil
	l.state.PerActivity[name] = seg
}

// SwitchActivity stops the current segment and starts next. Choosing
// Travel by hand hands over to the trip flow through the bus.
func (l *Ledger) SwitchActivity(next string) bool {
	return l.switchTo(next, false)
}

func (l *Ledger) switchTo(next string, fromTrip bool) bool {
	if !l.state.Running {
		l.reject("SwitchActivity", "day not running", slog.String("activity", next))
		return false
	}
	if !l.Known(next) {
		l.reject("SwitchActivity", "unknown activity", slog.String("activity", next))
		return false
	}
	if next == l.state.CurrentActivity {
		return false
	}
	now := l.now()
	l.stop(l.state.CurrentActivity, now)
	l.start(next, now)
	l.state.CurrentActivity = next
	if next != model.Travel {
		l.state.LastNonTravelActivity = next
	}
	l.persist()
	l.log.Debug("activity switched", slog.String("activity", next), slog.Bool("trip", fromTrip))
	if next == model.Travel && !fromTrip {
		l.travelSelected()
	}
	return true
}

// Resume switches back to the last non-travel activity.
func (l *Ledger) Resume() bool {
	return l.SwitchActivity(l.state.LastNonTravelActivity)
}

// AddSplitItem appends an item to the running activity.
func (l *Ledger) AddSplitItem(in model.ItemInput) (model.SplitItem, bool) {
	if !l.state.Running {
		l.reject("AddSplitItem", "day not running")
		return model.SplitItem{}, false
	}
	return l.addItem(l.state.CurrentActivity, in)
}

// AddItemTo appends an item to the named activity regardless of which one
// is live. Unknown names get a segment of their own.
func (l *Ledger) AddItemTo(activity string, in model.ItemInput) (model.SplitItem, bool) {
	if strings.TrimSpace(activity) == "" {
		l.reject("AddItemTo", "missing activity")
		return model.SplitItem{}, false
	}
	return l.addItem(activity, in)
}

func (l *Ledger) addItem(activity string, in model.ItemInput) (model.SplitItem, bool) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		l.reject("AddSplitItem", "empty title", slog.String("activity", activity))
		return model.SplitItem{}, false
	}
	now := l.now()
	seg := l.state.PerActivity[activity]

	from, to := now, now
	bounded := in.StartAt != nil && in.EndAt != nil
	switch {
	case bounded:
		from, to = *in.StartAt, *in.EndAt
	case seg.LastMark != nil:
		from = *seg.LastMark
	case seg.StartAt != nil:
		from = *seg.StartAt
	case in.Minutes != nil:
		from = now.Add(-time.Duration(*in.Minutes) * time.Minute)
	}

	minutes := timecalc.MinutesBetween(from, to)
	if in.Minutes != nil {
		minutes = *in.Minutes
	}
	if minutes <= 0 {
		l.reject("AddSplitItem", "non-positive minutes", slog.String("activity", activity), slog.Int("minutes", minutes))
		return model.SplitItem{}, false
	}

	item := model.SplitItem{
		ID:       uuid.NewString(),
		Title:    title,
		Minutes:  minutes,
		Billable: in.Billable,
		WBSO:     in.WBSO && activity == Research,
		StartAt:  from,
		EndAt:    to,
	}
	seg.Items = append(seg.Items, item)
	if !bounded {
		mark := now
		seg.LastMark = &mark
	}
	l.state.PerActivity[activity] = seg
	l.persist()
	return item, true
}

// Elapsed returns the milliseconds accumulated by activity up to now.
func (l *Ledger) Elapsed(activity string) int64 {
	return timecalc.Elapsed(l.now(), l.state.PerActivity[activity])
}

// TotalElapsed returns the whole-day clock in milliseconds.
func (l *Ledger) TotalElapsed() int64 {
	return timecalc.ClockElapsed(l.now(), l.state.Total)
}

// Snapshot freezes every running segment as if stopped now, without
// touching live state. Activities that never ran are left out.
func (l *Ledger) Snapshot() model.Snapshot {
	return freeze(l.now(), l.state)
}

func freeze(now time.Time, st model.DayState) model.Snapshot {
	snap := model.Snapshot{
		TotalMs:     timecalc.ClockElapsed(now, st.Total),
		PerActivity: map[string]model.ActivityTotal{},
	}
	for name, seg := range st.PerActivity {
		ms := timecalc.Elapsed(now, seg)
		if ms == 0 && len(seg.Items) == 0 && seg.StartAt == nil {
			continue
		}
		snap.PerActivity[name] = model.ActivityTotal{
			Ms:    ms,
			Items: append([]model.SplitItem{}, seg.Items...),
		}
	}
	return snap
}

// EndDay commits the frozen totals, resets to a blank idle day and clears
// the persisted ledger. It returns the committed snapshot. While idle it
// only clears items logged since the last end; with none it is a no-op.
func (l *Ledger) EndDay() (model.Snapshot, bool) {
	if !l.state.Running && !l.hasItems() {
		return model.Snapshot{PerActivity: map[string]model.ActivityTotal{}}, false
	}
	now := l.now()
	for name := range l.state.PerActivity {
		l.stop(name, now)
	}
	l.state.Total.BaseMs = timecalc.ClockElapsed(now, l.state.Total)
	l.state.Total.StartAt = nil
	l.state.Running = false
	committed := freeze(now, l.state)

	l.state = l.blank()
	if err := l.store.Delete(l.Key()); err != nil {
		l.log.Error("clearing workday failed", slog.String("error", err.Error()))
	}
	l.log.Info("day ended", slog.Int64("total_ms", committed.TotalMs))
	return committed, true
}

func (l *Ledger) hasItems() bool {
	for _, seg := range l.state.PerActivity {
		if len(seg.Items) > 0 {
			return true
		}
	}
	return false
}
