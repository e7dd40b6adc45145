package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start [activity]",
	Short: "Start the workday, optionally with a given activity",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStart,
}

var switchCmd = &cobra.Command{
	Use:   "switch <activity>",
	Short: "Switch the running activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runSwitch,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Switch back to the last non-travel activity",
	Args:  cobra.NoArgs,
	RunE:  runResume,
}

func runStart(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	if a.Activity.Running() {
		exitUsage("The day is already running (%s). Use fdt switch.", a.Activity.Current())
	}
	err := a.Do(func() error {
		if len(args) == 1 && !a.Activity.SetCurrent(args[0]) {
			exitUsage("Unknown activity %q. Known: %v", args[0], a.Activity.Activities())
		}
		a.Activity.StartDay()
		return nil
	})
	if err != nil {
		exitStorage(err)
	}
	fmt.Printf("Started the day with %s at %s\n", a.Activity.Current(), time.Now().Format("15:04:05"))
	return nil
}

func runSwitch(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	name := args[0]
	switch {
	case !a.Activity.Known(name):
		exitUsage("Unknown activity %q. Known: %v", name, a.Activity.Activities())
	case !a.Activity.Running():
		exitUsage("The day has not started. Use fdt start %s.", name)
	}
	var changed, travel bool
	unsub := a.Bus.OnTravelSelected(func() { travel = true })
	defer unsub()
	a.Do(func() error {
		changed = a.Activity.SwitchActivity(name)
		return nil
	})
	if !changed {
		fmt.Printf("Already on %s.\n", name)
		return nil
	}
	fmt.Printf("Switched to %s.\n", name)
	if travel {
		fmt.Println("Where from? Record the trip with fdt trip start <from>.")
	}
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	var ok bool
	a.Do(func() error {
		ok = a.Activity.Resume()
		return nil
	})
	if !ok {
		exitUsage("Nothing to resume.")
	}
	fmt.Printf("Resumed %s.\n", a.Activity.Current())
	return nil
}
