package daylog

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatMD   = "md"
)

// Export writes entries to w in format.
func Export(w io.Writer, entries []model.DayLogEntry, format string) error {
	switch format {
	case FormatJSON:
		if entries == nil {
			entries = []model.DayLogEntry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	case FormatMD:
		return writeMarkdown(w, entries)
	case FormatCSV, "":
		return writeCSV(w, entries)
	default:
		return fmt.Errorf("unknown format %q (want csv, json or md)", format)
	}
}

func activityNames(m map[string]model.ActivityTotal) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// writeCSV emits one row per activity, split item and trip leg.
func writeCSV(w io.Writer, entries []model.DayLogEntry) error {
	var b strings.Builder
	b.WriteString("date,project,user,kind,name,minutes,km,billable,wbso\n")
	row := func(e model.DayLogEntry, kind, name string, minutes int64, km float64, billable, wbso bool) {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%d,%.2f,%t,%t\n",
			csvEscape(e.Date),
			csvEscape(e.Project),
			csvEscape(e.User),
			kind,
			csvEscape(name),
			minutes,
			km,
			billable,
			wbso,
		)
	}
	for _, e := range entries {
		for _, name := range activityNames(e.PerActivity) {
			act := e.PerActivity[name]
			row(e, "activity", name, act.Ms/60000, 0, false, false)
			for _, it := range act.Items {
				row(e, "item", name+": "+it.Title, int64(it.Minutes), 0, it.Billable, it.WBSO)
			}
		}
		for _, leg := range e.Trips {
			var minutes int64
			if leg.EndTime != nil {
				minutes = int64(timecalc.MinutesBetween(leg.StartTime, *leg.EndTime))
			}
			row(e, "trip", leg.StartName+" -> "+leg.EndName, minutes, leg.Km, false, false)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdown(w io.Writer, entries []model.DayLogEntry) error {
	var b strings.Builder
	if len(entries) == 0 {
		b.WriteString("No closed days yet.\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "## %s • %s (%s)\n\n", e.Date, e.Project, timecalc.FormatClock(e.TotalMs))
		for _, name := range activityNames(e.PerActivity) {
			act := e.PerActivity[name]
			fmt.Fprintf(&b, "- **%s** %s\n", name, timecalc.FormatClock(act.Ms))
			for _, it := range act.Items {
				wbso := "non-WBSO"
				if it.WBSO {
					wbso = "WBSO"
				}
				billable := "non-billable"
				if it.Billable {
					billable = "billable"
				}
				fmt.Fprintf(&b, "  - %s: %d min • %s • %s\n", it.Title, it.Minutes, wbso, billable)
			}
		}
		if len(e.Trips) > 0 {
			b.WriteString("\nTrips:\n")
			for i, leg := range e.Trips {
				fmt.Fprintf(&b, "%d. %s → %s (%.1f km)", i+1, leg.StartName, leg.EndName, leg.Km)
				if leg.Note != "" {
					fmt.Fprintf(&b, " %s", leg.Note)
				}
				b.WriteString("\n")
			}
		}
		if len(e.Receipts) > 0 {
			b.WriteString("\nReceipts:\n")
			for _, r := range e.Receipts {
				fmt.Fprintf(&b, "- %s € %s\n", r.Merchant, r.Total)
			}
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
