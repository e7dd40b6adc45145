package activity

import (
	"log/slog"

	"github.com/Tiliavir/field-day-tracker/internal/bus"
	"github.com/Tiliavir/field-day-tracker/internal/model"
)

// Attach subscribes the ledger to b and registers it as the summary
// provider. A previously attached bus is detached first.
func (l *Ledger) Attach(b *bus.Bus) {
	l.Detach()
	l.bus = b
	l.unsubs = []bus.Unsubscribe{
		b.OnTripStarted(l.onTripStarted),
		b.OnArrived(l.onArrived),
		b.OnEndDay(func() { l.EndDay() }),
		b.OnAddActivityItem(func(req bus.ItemRequest) { l.AddItemTo(req.Activity, req.ItemInput) }),
		b.OnUserChanged(l.SwitchUser),
		b.ProvideSummary(l.Snapshot),
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

func (l *Ledger) travelSelected() {
	if l.bus != nil {
		l.bus.TravelSelected()
	}
}

// onTripStarted makes sure the day runs and forces Travel without
// echoing travelSelected back to the trip flow.
func (l *Ledger) onTripStarted(leg model.TripLeg) {
	if !l.state.Running {
		if l.Known(model.Travel) {
			l.state.CurrentActivity = model.Travel
		}
		l.StartDay()
	}
	l.switchTo(model.Travel, true)
	l.log.Debug("travel started by trip", slog.String("from", leg.StartName))
}

func (l *Ledger) onArrived(leg model.TripLeg) {
	if !l.state.Running || l.state.CurrentActivity != model.Travel {
		return
	}
	last := l.state.LastNonTravelActivity
	if last == "" || last == model.Travel || l.offer == nil {
		return
	}
	if l.offer(last) {
		l.SwitchActivity(last)
	}
}
