package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/field-day-tracker/internal/location"
)

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Known places and favorites",
}

var locationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in places and favorites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := openApp(cmd.Context())
		defer a.Close()

		for _, p := range a.Locations.Places() {
			fmt.Printf("%-22s%9.5f, %9.5f\n", p.Name, p.Lat, p.Lon)
		}
		fmt.Printf("%-22s%s\n", location.GPSToken, "position from $"+location.GPSEnv)
		return nil
	},
}

var locationAddCmd = &cobra.Command{
	Use:   "add <name> <lat,lon>",
	Short: "Save a favorite place",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args[:len(args)-1], " ")
		c, err := location.ParseCoords(args[len(args)-1])
		if err != nil {
			exitUsage("%v", err)
		}

		a := openApp(cmd.Context())
		defer a.Close()

		if err := a.Locations.AddFavorite(location.Place{Name: name, Lat: c.Lat, Lon: c.Lon}); err != nil {
			exitUsage("%v", err)
		}
		fmt.Printf("Saved %s.\n", name)
		return nil
	},
}

var locationRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Forget a favorite place",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := openApp(cmd.Context())
		defer a.Close()

		name := strings.Join(args, " ")
		removed, err := a.Locations.RemoveFavorite(name)
		if err != nil {
			exitStorage(err)
		}
		if !removed {
			exitUsage("No favorite named %q.", name)
		}
		fmt.Printf("Removed %s.\n", name)
		return nil
	},
}

func init() {
	locationCmd.AddCommand(locationListCmd)
	locationCmd.AddCommand(locationAddCmd)
	locationCmd.AddCommand(locationRemoveCmd)
}
