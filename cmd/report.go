package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show this week's closed days aggregated by project and activity",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv")
}

// weekTotals sums the milliseconds of entries per project and per activity.
func weekTotals(entries []model.DayLogEntry) (projects, activities map[string]int64, km float64) {
	projects = map[string]int64{}
	activities = map[string]int64{}
	for _, e := range entries {
		projects[e.Project] += e.TotalMs
		for name, t := range e.PerActivity {
			activities[name] += t.Ms
		}
		for _, l := range e.Trips {
			km += l.Km
		}
	}
	return projects, activities, km
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runReport(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	now := time.Now()
	from, to := timecalc.WeekRange(now)
	label := timecalc.ISOWeekLabel(now)

	entries := a.Day.Log().Between(timecalc.DateKey(from), timecalc.DateKey(to))
	projects, activities, km := weekTotals(entries)

	var grandTotal int64
	for _, ms := range projects {
		grandTotal += ms
	}

	switch reportFormat {
	case "csv":
		fmt.Println("kind,name,duration_minutes")
		for _, p := range sortedKeys(projects) {
			fmt.Printf("project,%s,%d\n", p, projects[p]/60000)
		}
		for _, n := range sortedKeys(activities) {
			fmt.Printf("activity,%s,%d\n", n, activities[n]/60000)
		}
	default: // md
		fmt.Printf("Week %s (%d days)\n", label, len(entries))
		fmt.Println("--------------------------------")
		for _, p := range sortedKeys(projects) {
			fmt.Printf("%-20s%s\n", p, timecalc.FormatMs(projects[p]))
		}
		fmt.Println("--------------------------------")
		for _, n := range sortedKeys(activities) {
			fmt.Printf("%-20s%s\n", n, timecalc.FormatMs(activities[n]))
		}
		fmt.Println("--------------------------------")
		fmt.Printf("%-20s%s\n", "Total", timecalc.FormatMs(grandTotal))
		fmt.Printf("%-20s%.2f km\n", "Driven", km)
	}
	return nil
}
