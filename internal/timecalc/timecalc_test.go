package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

func TestFormatMs(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0s"},
		{45_000, "45s"},
		{60_000, "1m"},
		{90_000, "1m"},
		{3_600_000, "1h 0m"},
		{3_661_000, "1h 1m"},
		{5_400_000, "1h 30m"},
	}
	for _, tt := range tests {
		got := timecalc.FormatMs(tt.ms)
		if got != tt.want {
			t.Errorf("FormatMs(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{-5, "00:00:00"},
		{0, "00:00:00"},
		{61_000, "00:01:01"},
		{3_661_999, "01:01:01"},
	}
	for _, tt := range tests {
		got := timecalc.FormatClock(tt.ms)
		if got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestElapsed(t *testing.T) {
	t0 := time.Date(2026, 2, 27, 8, 0, 0, 0, time.UTC)

	idle := model.ActivitySegment{BaseMs: 1500}
	if got := timecalc.Elapsed(t0.Add(time.Hour), idle); got != 1500 {
		t.Errorf("idle Elapsed = %d, want 1500", got)
	}

	running := model.ActivitySegment{BaseMs: 1500, StartAt: &t0}
	if got := timecalc.Elapsed(t0.Add(10*time.Second), running); got != 11500 {
		t.Errorf("running Elapsed = %d, want 11500", got)
	}

	// A clock that moved backwards never reduces the accumulated value.
	if got := timecalc.Elapsed(t0.Add(-time.Second), running); got != 1500 {
		t.Errorf("Elapsed before start = %d, want 1500", got)
	}
}

func TestMinutesBetween(t *testing.T) {
	t0 := time.Date(2026, 2, 27, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{29 * time.Second, 0},
		{30 * time.Second, 1},
		{5 * time.Minute, 5},
		{5*time.Minute + 31*time.Second, 6},
	}
	for _, tt := range tests {
		if got := timecalc.MinutesBetween(t0, t0.Add(tt.d)); got != tt.want {
			t.Errorf("MinutesBetween(+%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestWeekRange(t *testing.T) {
	// 2026-02-27 is a Friday (week 9).
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	monday, sunday := timecalc.WeekRange(fri)

	wantMonday := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	wantSunday := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)

	if !monday.Equal(wantMonday) {
		t.Errorf("WeekRange monday = %v, want %v", monday, wantMonday)
	}
	if !sunday.Equal(wantSunday) {
		t.Errorf("WeekRange sunday = %v, want %v", sunday, wantSunday)
	}
	if got := timecalc.ISOWeekLabel(fri); got != "2026-W09" {
		t.Errorf("ISOWeekLabel = %q, want %q", got, "2026-W09")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if !timecalc.SameDay(a, b) {
		t.Error("SameDay: expected same day for a and b")
	}
	if timecalc.SameDay(a, c) {
		t.Error("SameDay: expected different day for a and c")
	}
}

func TestGenerateID(t *testing.T) {
	ts := time.Date(2026, 2, 27, 8, 32, 10, 0, time.UTC)
	id := timecalc.GenerateID(ts)
	if len(id) != len("20260227-083210-xxxxx") {
		t.Errorf("GenerateID length = %d, want %d", len(id), len("20260227-083210-xxxxx"))
	}
	if id[:15] != "20260227-083210" {
		t.Errorf("GenerateID prefix = %q, want %q", id[:15], "20260227-083210")
	}
}
