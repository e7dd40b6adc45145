package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/field-day-tracker/internal/model"
)

var (
	tripNote   string
	tripResume bool
)

var tripCmd = &cobra.Command{
	Use:   "trip",
	Short: "Trips between locations",
	Long: `Locations are built-in places, favorites from the locations file,
"lat,lon" pairs or "gps" (coordinates from $FDT_GPS). Unknown names are
recorded without coordinates and count 0 km.`,
}

var tripStartCmd = &cobra.Command{
	Use:   "start <from>",
	Short: "Start a trip and switch to Travel",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTripStart,
}

var tripArriveCmd = &cobra.Command{
	Use:   "arrive <to>",
	Short: "Finish the active trip",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTripArrive,
}

func init() {
	tripArriveCmd.Flags().StringVar(&tripNote, "note", "", "Note for the leg")
	tripArriveCmd.Flags().BoolVar(&tripResume, "resume", false, "Resume the last non-travel activity")
	tripCmd.AddCommand(tripStartCmd)
	tripCmd.AddCommand(tripArriveCmd)
}

func runTripStart(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	var (
		leg model.TripLeg
		ok  bool
	)
	a.Do(func() error {
		label, coords := a.Locations.Resolve(cmd.Context(), strings.Join(args, " "))
		leg, ok = a.Trips.StartTrip(label, coords)
		return nil
	})
	if !ok {
		active, _ := a.Trips.Active()
		exitUsage("A trip from %s is already in progress.", active.StartName)
	}
	fmt.Printf("Trip started from %s at %s.\n", leg.StartName, leg.StartTime.Format("15:04"))
	if leg.StartCoords == nil {
		fmt.Println("No coordinates for this location; the leg will count 0 km.")
	}
	return nil
}

func runTripArrive(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	var (
		leg     model.TripLeg
		ok      bool
		offered string
	)
	a.Do(func() error {
		a.Activity.OnResumeOffer(func(activity string) bool {
			offered = activity
			return tripResume
		})
		label, coords := a.Locations.Resolve(cmd.Context(), strings.Join(args, " "))
		leg, ok = a.Trips.Arrive(label, coords, tripNote)
		return nil
	})
	if !ok {
		exitUsage("No active trip. Use fdt trip start <from>.")
	}
	fmt.Printf("Arrived at %s: %.2f km.\n", leg.EndName, leg.Km)
	switch {
	case offered != "" && tripResume:
		fmt.Printf("Resumed %s.\n", offered)
	case offered != "":
		fmt.Printf("Still on Travel. Run fdt resume to continue %s.\n", offered)
	}
	return nil
}
