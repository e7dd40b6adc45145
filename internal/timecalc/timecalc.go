package timecalc

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/Tiliavir/field-day-tracker/internal/model"
)

// GenerateID creates a sortable ID based on timestamp and random suffix.
func GenerateID(t time.Time) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 5)
	for i := range suffix {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		suffix[i] = chars[n.Int64()]
	}
	return fmt.Sprintf("%s-%s", t.Format("20060102-150405"), string(suffix))
}

// Elapsed returns the accumulated plus live milliseconds of a segment.
// It is derived from wall-clock timestamps only, so a missed redraw never
// changes the result.
func Elapsed(now time.Time, seg model.ActivitySegment) int64 {
	return live(now, seg.BaseMs, seg.StartAt)
}

// ClockElapsed is Elapsed for the whole-day clock.
func ClockElapsed(now time.Time, c model.Clock) int64 {
	return live(now, c.BaseMs, c.StartAt)
}

func live(now time.Time, base int64, startAt *time.Time) int64 {
	if startAt == nil {
		return base
	}
	d := now.Sub(*startAt).Milliseconds()
	if d < 0 {
		d = 0
	}
	return base + d
}

// MinutesBetween rounds the span from..to to whole minutes, halves up.
func MinutesBetween(from, to time.Time) int {
	ms := float64(to.Sub(from).Milliseconds())
	return int(math.Floor(ms/60000 + 0.5))
}

// FormatMs formats milliseconds like "1h 40m", "45m" or "30s".
func FormatMs(ms int64) string {
	s := ms / 1000
	h := s / 3600
	m := (s % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s%60)
}

// FormatClock formats milliseconds as HH:MM:SS, clamping negatives to zero.
func FormatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	s := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// DateKey returns the YYYY-MM-DD day of t.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	sunday := EndOfDay(monday.AddDate(0, 0, 6))
	return monday, sunday
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
