package cmd

import (
	"testing"

	"github.com/Tiliavir/field-day-tracker/internal/model"
)

func TestWeekTotals(t *testing.T) {
	entries := []model.DayLogEntry{
		{
			Project: "Project A",
			TotalMs: 3600000,
			PerActivity: map[string]model.ActivityTotal{
				"Engineering": {Ms: 2400000},
				"Travel":      {Ms: 1200000},
			},
			Trips: []model.TripLeg{{Km: 2.71}, {Km: 1.5}},
		},
		{
			Project: "Project B",
			TotalMs: 1800000,
			PerActivity: map[string]model.ActivityTotal{
				"Engineering": {Ms: 1800000},
			},
		},
		{
			Project:     "Project A",
			TotalMs:     600000,
			PerActivity: map[string]model.ActivityTotal{"Meeting": {Ms: 600000}},
		},
	}

	projects, activities, km := weekTotals(entries)

	if projects["Project A"] != 4200000 || projects["Project B"] != 1800000 {
		t.Errorf("projects = %v", projects)
	}
	if activities["Engineering"] != 4200000 || activities["Travel"] != 1200000 || activities["Meeting"] != 600000 {
		t.Errorf("activities = %v", activities)
	}
	if km < 4.2099 || km > 4.2101 {
		t.Errorf("km = %v, want 4.21", km)
	}
}

func TestSortedKeys(t *testing.T) {
	got := sortedKeys(map[string]int64{"b": 1, "a": 2, "c": 3})
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedKeys = %v, want %v", got, want)
		}
	}
}
