// Package bus is the in-process coordination channel between the
// activity ledger, the trip ledger and the day orchestrator. Dispatch is
// synchronous: a publish returns after every subscriber has run.
package bus

import (
	"log/slog"
	"sync"

	"github.com/Tiliavir/field-day-tracker/internal/model"
)

// Signal names, used for logging.
const (
	SignalTripStarted     = "tripStarted"
	SignalArrived         = "arrived"
	SignalEndDay          = "endDay"
	SignalSummary         = "requestSummary"
	SignalAddActivityItem = "addActivityItem"
	SignalUserChanged     = "userChanged"
	SignalTravelSelected  = "travelSelected"
)

// ItemRequest asks the activity ledger to append a split item to the
// named activity, whether or not it is the live one.
type ItemRequest struct {
	Activity string
	model.ItemInput
}

// Unsubscribe removes a handler. Calling it twice is harmless.
type Unsubscribe func()

type subscriber[T any] struct {
	id int
	fn func(T)
}

type topic[T any] struct {
	name string
	mu   sync.Mutex
	next int
	subs []subscriber[T]
}

func (t *topic[T]) add(fn func(T)) Unsubscribe {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	id := t.next
	t.subs = append(t.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, s := range t.subs {
			if s.id == id {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

// publish calls subscribers in registration order. The list is copied so
// handlers may subscribe, unsubscribe or publish while being dispatched.
func (t *topic[T]) publish(log *slog.Logger, v T) {
	t.mu.Lock()
	subs := append([]subscriber[T](nil), t.subs...)
	t.mu.Unlock()
	log.Debug("bus signal", slog.String("signal", t.name), slog.Int("subscribers", len(subs)))
	for _, s := range subs {
		s.fn(v)
	}
}

// Bus is the typed publish/subscribe registry.
type Bus struct {
	log *slog.Logger

	tripStarted    topic[model.TripLeg]
	arrived        topic[model.TripLeg]
	endDay         topic[struct{}]
	addItem        topic[ItemRequest]
	userChanged    topic[string]
	travelSelected topic[struct{}]

	mu         sync.Mutex
	summary    func() model.Snapshot
	summaryGen int
}

// New returns an empty Bus.
func New(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{
		log:            log,
		tripStarted:    topic[model.TripLeg]{name: SignalTripStarted},
		arrived:        topic[model.TripLeg]{name: SignalArrived},
		endDay:         topic[struct{}]{name: SignalEndDay},
		addItem:        topic[ItemRequest]{name: SignalAddActivityItem},
		userChanged:    topic[string]{name: SignalUserChanged},
		travelSelected: topic[struct{}]{name: SignalTravelSelected},
	}
}

func (b *Bus) OnTripStarted(fn func(model.TripLeg)) Unsubscribe { return b.tripStarted.add(fn) }
func (b *Bus) TripStarted(leg model.TripLeg)                    { b.tripStarted.publish(b.log, leg) }

func (b *Bus) OnArrived(fn func(model.TripLeg)) Unsubscribe { return b.arrived.add(fn) }
func (b *Bus) Arrived(leg model.TripLeg)                    { b.arrived.publish(b.log, leg) }

func (b *Bus) OnEndDay(fn func()) Unsubscribe {
	return b.endDay.add(func(struct{}) { fn() })
}
func (b *Bus) EndDay() { b.endDay.publish(b.log, struct{}{}) }

func (b *Bus) OnAddActivityItem(fn func(ItemRequest)) Unsubscribe { return b.addItem.add(fn) }
func (b *Bus) AddActivityItem(req ItemRequest)                    { b.addItem.publish(b.log, req) }

// OnUserChanged handlers must drop in-memory state and reload from the
// new namespace.
func (b *Bus) OnUserChanged(fn func(userID string)) Unsubscribe { return b.userChanged.add(fn) }
func (b *Bus) UserChanged(userID string)                       { b.userChanged.publish(b.log, userID) }

// OnTravelSelected fires when Travel is chosen by hand rather than by a
// started trip, so the trip flow owner can take over.
func (b *Bus) OnTravelSelected(fn func()) Unsubscribe {
	return b.travelSelected.add(func(struct{}) { fn() })
}
func (b *Bus) TravelSelected() { b.travelSelected.publish(b.log, struct{}{}) }

// ProvideSummary installs the single summary provider, replacing any
// previous one.
func (b *Bus) ProvideSummary(fn func() model.Snapshot) Unsubscribe {
	b.mu.Lock()
	b.summaryGen++
	gen := b.summaryGen
	b.summary = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.summaryGen == gen {
			b.summary = nil
		}
	}
}

// RequestSummary returns exactly one snapshot per call. Without a provider
// it returns an empty snapshot and false.
func (b *Bus) RequestSummary() (model.Snapshot, bool) {
	b.mu.Lock()
	fn := b.summary
	b.mu.Unlock()
	b.log.Debug("bus signal", slog.String("signal", SignalSummary), slog.Bool("provider", fn != nil))
	if fn == nil {
		return model.Snapshot{PerActivity: map[string]model.ActivityTotal{}}, false
	}
	return fn(), true
}
