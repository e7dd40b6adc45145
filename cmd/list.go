package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/field-day-tracker/internal/daylog"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

var (
	daylogWeek   bool
	daylogFrom   string
	daylogTo     string
	daylogFormat string
)

var daylogCmd = &cobra.Command{
	Use:   "daylog",
	Short: "Closed days",
}

var daylogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List day log entries, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runDaylogList,
}

var daylogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export day log entries to stdout",
	Args:  cobra.NoArgs,
	RunE:  runDaylogExport,
}

func init() {
	for _, c := range []*cobra.Command{daylogListCmd, daylogExportCmd} {
		c.Flags().BoolVar(&daylogWeek, "week", false, "Only this week's entries")
		c.Flags().StringVar(&daylogFrom, "from", "", "First date (YYYY-MM-DD)")
		c.Flags().StringVar(&daylogTo, "to", "", "Last date (YYYY-MM-DD)")
	}
	daylogExportCmd.Flags().StringVar(&daylogFormat, "format", "csv", "Output format: csv, json, md")
	daylogCmd.AddCommand(daylogListCmd)
	daylogCmd.AddCommand(daylogExportCmd)
}

// selectEntries applies the date flags to the day log.
func selectEntries(log *daylog.Log) []model.DayLogEntry {
	from, to := daylogFrom, daylogTo
	if daylogWeek {
		start, end := timecalc.WeekRange(time.Now())
		from, to = timecalc.DateKey(start), timecalc.DateKey(end)
	}
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			exitUsage("invalid date %q: %v", d, err)
		}
	}
	if from == "" && to == "" {
		return log.Entries()
	}
	if to == "" {
		to = "9999-12-31"
	}
	return log.Between(from, to)
}

func runDaylogList(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	printEntries(selectEntries(a.Day.Log()))
	return nil
}

func runDaylogExport(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	if err := daylog.Export(os.Stdout, selectEntries(a.Day.Log()), daylogFormat); err != nil {
		exitUsage("%v", err)
	}
	return nil
}

// printEntries prints one line per closed day.
func printEntries(entries []model.DayLogEntry) {
	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return
	}
	for _, e := range entries {
		km := 0.0
		for _, l := range e.Trips {
			km += l.Km
		}
		fmt.Printf("%s  %-14s%-10s%.2f km  %d receipts\n",
			e.Date, e.Project, timecalc.FormatMs(e.TotalMs), km, len(e.Receipts))
	}
}
