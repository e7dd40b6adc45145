package msgraph

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Tiliavir/field-day-tracker/internal/bus"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/storage"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

// ImportResult holds counters for an import run.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   int
}

// ImportOptions configures an import run.
type ImportOptions struct {
	Activity string
	Timezone string
	Billable bool
	DryRun   bool
	Log      *slog.Logger
}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// itemTitle is the subject, followed by the location when there is one.
func itemTitle(event CalendarEvent) string {
	title := strings.TrimSpace(event.Subject)
	if title == "" {
		title = "(no subject)"
	}
	if loc := strings.TrimSpace(event.Location.DisplayName); loc != "" {
		title += " @ " + loc
	}
	return title
}

// shouldSkip returns true if the event should not be imported.
func shouldSkip(event CalendarEvent) bool {
	switch {
	case event.IsCancelled, event.IsAllDay:
		return true
	case event.Sensitivity == "private", event.ShowAs == "free":
		return true
	case event.Start.DateTime == "" || event.End.DateTime == "":
		return true
	}
	return false
}

// MapEventToItem converts a Graph CalendarEvent into a split item request
// for activity, bounded by the event's start and end.
func MapEventToItem(event CalendarEvent, timezone, activity string, billable bool) (bus.ItemRequest, error) {
	start, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return bus.ItemRequest{}, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return bus.ItemRequest{}, fmt.Errorf("parsing end time: %w", err)
	}
	if timecalc.MinutesBetween(start, end) <= 0 {
		return bus.ItemRequest{}, fmt.Errorf("event %q has no duration", event.Subject)
	}
	return bus.ItemRequest{
		Activity: activity,
		ItemInput: model.ItemInput{
			Title:    itemTitle(event),
			Billable: billable,
			StartAt:  &start,
			EndAt:    &end,
		},
	}, nil
}

// ImportEvents sends every importable event not seen before to the
// activity ledger as an addActivityItem request and remembers its id in
// the user's namespace. Progress is printed to out.
func ImportEvents(s storage.Store, ns storage.Namespace, b *bus.Bus, events []CalendarEvent, opts ImportOptions, out io.Writer) (ImportResult, error) {
	var result ImportResult
	if opts.Activity == "" {
		opts.Activity = "Meeting"
	}
	key := ns.Key(storage.OutlookSeen)
	seen := storage.Load(s, key, map[string]string{}, opts.Log)

	for _, event := range events {
		if shouldSkip(event) {
			continue
		}
		if _, ok := seen[event.ID]; ok {
			fmt.Fprintf(out, "  – Skipped:  %s (already imported)\n", event.Subject)
			result.Skipped++
			continue
		}

		req, err := MapEventToItem(event, opts.Timezone, opts.Activity, opts.Billable)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}

		if !opts.DryRun {
			b.AddActivityItem(req)
			seen[event.ID] = timecalc.DateKey(*req.StartAt)
		}
		fmt.Fprintf(out, "  ✓ Imported: %s (%s)\n", req.Title, timecalc.FormatMs(req.EndAt.Sub(*req.StartAt).Milliseconds()))
		result.Imported++
	}

	if !opts.DryRun && result.Imported > 0 {
		if err := storage.Save(s, key, seen); err != nil {
			return result, fmt.Errorf("saving imported event ids: %w", err)
		}
	}
	return result, nil
}
