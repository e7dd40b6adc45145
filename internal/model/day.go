package model

import "time"

// Travel is the activity that belongs to the trip flow.
const Travel = "Travel"

// DefaultActivities lists the activities a day starts with.
var DefaultActivities = []string{"Engineering", "Assembly", "Research", Travel, "Meeting", "Admin"}

// SplitItem is a discrete record of work logged within an activity.
type SplitItem struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Minutes  int       `json:"minutes"`
	Billable bool      `json:"billable"`
	WBSO     bool      `json:"wbso"` // only meaningful for Research
	StartAt  time.Time `json:"startAt"`
	EndAt    time.Time `json:"endAt"`
}

// ActivitySegment is the accumulated-plus-live timer of one activity.
// BaseMs only grows when a running segment is stopped.
type ActivitySegment struct {
	BaseMs   int64       `json:"baseMs"`
	StartAt  *time.Time  `json:"startAt"`
	Items    []SplitItem `json:"items"`
	LastMark *time.Time  `json:"lastMark"`
}

// Running reports whether the segment's clock is live.
func (s ActivitySegment) Running() bool { return s.StartAt != nil }

// Clock is the whole-day clock kept next to the per-activity segments.
type Clock struct {
	BaseMs  int64      `json:"baseMs"`
	StartAt *time.Time `json:"startAt"`
}

// DayState is the persisted workday ledger.
type DayState struct {
	Running               bool                       `json:"running"`
	CurrentActivity       string                     `json:"currentActivity"`
	LastNonTravelActivity string                     `json:"lastNonTravelActivity"`
	Total                 Clock                      `json:"total"`
	PerActivity           map[string]ActivitySegment `json:"perActivity"`
}

// Clone returns a deep copy so callers cannot alias ledger state.
func (d DayState) Clone() DayState {
	out := d
	out.Total.StartAt = cloneTime(d.Total.StartAt)
	out.PerActivity = make(map[string]ActivitySegment, len(d.PerActivity))
	for name, seg := range d.PerActivity {
		c := seg
		c.StartAt = cloneTime(seg.StartAt)
		c.LastMark = cloneTime(seg.LastMark)
		c.Items = append([]SplitItem(nil), seg.Items...)
		out.PerActivity[name] = c
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// ActivityTotal is the frozen tally of one activity.
type ActivityTotal struct {
	Ms    int64       `json:"ms"`
	Items []SplitItem `json:"items"`
}

// Snapshot is the frozen view of the activity ledger.
type Snapshot struct {
	TotalMs     int64                    `json:"totalMs"`
	PerActivity map[string]ActivityTotal `json:"perActivity"`
}

// ItemInput carries the caller-supplied fields of a new split item.
// A nil Minutes means "elapsed since the segment's last mark". Items with
// both StartAt and EndAt (calendar imports) keep those bounds and leave
// the last mark alone.
type ItemInput struct {
	Title    string     `json:"title"`
	Minutes  *int       `json:"minutes,omitempty"`
	Billable bool       `json:"billable"`
	WBSO     bool       `json:"wbso"`
	StartAt  *time.Time `json:"startAt,omitempty"`
	EndAt    *time.Time `json:"endAt,omitempty"`
}
