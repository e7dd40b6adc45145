package bus_test

import (
	"testing"

	"github.com/Tiliavir/field-day-tracker/internal/bus"
	"github.com/Tiliavir/field-day-tracker/internal/model"
)

func TestPublishOrderAndUnsubscribe(t *testing.T) {
	b := bus.New(nil)
	var got []string
	unA := b.OnTripStarted(func(l model.TripLeg) { got = append(got, "a:"+l.ID) })
	b.OnTripStarted(func(l model.TripLeg) { got = append(got, "b:"+l.ID) })

	b.TripStarted(model.TripLeg{ID: "1"})
	unA()
	unA()
	b.TripStarted(model.TripLeg{ID: "2"})

	want := []string{"a:1", "b:1", "b:2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNestedPublishIsSynchronous(t *testing.T) {
	b := bus.New(nil)
	var order []string
	b.OnArrived(func(model.TripLeg) {
		order = append(order, "arrived")
		b.EndDay()
		order = append(order, "after endDay")
	})
	b.OnEndDay(func() { order = append(order, "endDay") })

	b.Arrived(model.TripLeg{})
	want := []string{"arrived", "endDay", "after endDay"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRequestSummary(t *testing.T) {
	b := bus.New(nil)

	snap, ok := b.RequestSummary()
	if ok {
		t.Error("expected no provider")
	}
	if snap.TotalMs != 0 || snap.PerActivity == nil || len(snap.PerActivity) != 0 {
		t.Errorf("empty summary = %+v", snap)
	}

	calls := 0
	first := b.ProvideSummary(func() model.Snapshot { calls++; return model.Snapshot{TotalMs: 1} })
	b.ProvideSummary(func() model.Snapshot { calls++; return model.Snapshot{TotalMs: 2} })
	first() // stale unsubscribe must not remove the newer provider

	snap, ok = b.RequestSummary()
	if !ok || snap.TotalMs != 2 {
		t.Errorf("RequestSummary = %+v, %v; want TotalMs 2", snap, ok)
	}
	if calls != 1 {
		t.Errorf("provider calls = %d, want exactly 1", calls)
	}
}

func TestAddActivityItemAndUserChanged(t *testing.T) {
	b := bus.New(nil)
	var req bus.ItemRequest
	var user string
	b.OnAddActivityItem(func(r bus.ItemRequest) { req = r })
	b.OnUserChanged(func(id string) { user = id })

	b.AddActivityItem(bus.ItemRequest{Activity: "Travel", ItemInput: model.ItemInput{Title: "fuel stop"}})
	b.UserChanged("u-rosa")

	if req.Activity != "Travel" || req.Title != "fuel stop" {
		t.Errorf("item request = %+v", req)
	}
	if user != "u-rosa" {
		t.Errorf("user = %q, want u-rosa", user)
	}
}
