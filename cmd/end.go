package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

var (
	summaryFormat string
	endProject    string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the day summary without ending the day",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var endCmd = &cobra.Command{
	Use:   "end",
	Short: "End the day and write it to the day log",
	Args:  cobra.NoArgs,
	RunE:  runEnd,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryFormat, "format", "text", "Output format: text, json")
	endCmd.Flags().StringVar(&endProject, "project", "", "Project for the day log entry (default: the current project)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	sum := a.Day.Summary()
	if summaryFormat == "json" {
		data, err := json.MarshalIndent(sum, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
		return nil
	}
	printSummary(sum)
	return nil
}

func runEnd(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	var entry model.DayLogEntry
	err := a.Do(func() error {
		var err error
		entry, err = a.Day.EndDay(cmd.Context(), endProject)
		return err
	})
	if err != nil {
		exitStorage(err)
	}
	fmt.Printf("Day %s closed for %s (%s).\n", entry.Date, entry.Project, entry.ID)
	printSummary(model.DaySummary{
		TotalMs:     entry.TotalMs,
		PerActivity: entry.PerActivity,
		Trips:       entry.Trips,
		Receipts:    entry.Receipts,
	})
	return nil
}

func printSummary(sum model.DaySummary) {
	fmt.Printf("Total: %s\n", timecalc.FormatMs(sum.TotalMs))
	printActivities(sum.PerActivity)
	if len(sum.Trips) > 0 {
		fmt.Println("Trips:")
		printLegs(sum.Trips)
	}
	if len(sum.Receipts) > 0 {
		fmt.Println("Receipts:")
		for _, r := range sum.Receipts {
			fmt.Printf("  %s  %s\n", r.Merchant, r.Total)
		}
	}
}
