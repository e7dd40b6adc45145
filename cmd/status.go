package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running activity, trip and today's totals",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	u := a.User()
	fmt.Printf("User: %s (%s)  Project: %s\n", u.Name, u.ID, a.Day.Project())

	if !a.Activity.Running() {
		fmt.Println("Day not started.")
		return nil
	}

	fmt.Println("Running:")
	fmt.Printf("  Activity: %s\n", a.Activity.Current())
	fmt.Printf("  Elapsed: %s\n", timecalc.FormatClock(a.Activity.Elapsed(a.Activity.Current())))
	fmt.Printf("  Day: %s\n", timecalc.FormatClock(a.Activity.TotalElapsed()))
	if leg, ok := a.Trips.Active(); ok {
		fmt.Printf("  Trip: from %s since %s (%s)\n", leg.StartName, leg.StartTime.Format("15:04"), timecalc.FormatClock(a.Trips.ActiveElapsed()))
	}

	snap := a.Activity.Snapshot()
	if len(snap.PerActivity) > 0 {
		fmt.Println("Activities:")
		printActivities(snap.PerActivity)
	}
	if legs := a.Trips.Legs(); len(legs) > 0 {
		fmt.Printf("Trips (%.2f km):\n", a.Trips.TotalKm())
		printLegs(legs)
	}
	return nil
}
