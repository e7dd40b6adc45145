package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project [name]",
	Short: "Show or set the project the day is booked on",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProject,
}

func runProject(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	if len(args) == 0 {
		current := a.Day.Project()
		for _, p := range a.Config.Day.Projects {
			mark := " "
			if p == current {
				mark = "*"
			}
			fmt.Printf("%s %s\n", mark, p)
		}
		if !slices.Contains(a.Config.Day.Projects, current) {
			fmt.Printf("* %s\n", current)
		}
		return nil
	}

	err := a.Do(func() error { return a.Day.SetProject(args[0]) })
	if err != nil {
		exitStorage(err)
	}
	fmt.Printf("Project: %s\n", args[0])
	return nil
}
