package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/field-day-tracker/internal/model"
)

var (
	itemMinutes  int
	itemBillable bool
	itemWBSO     bool
	itemActivity string
)

var itemCmd = &cobra.Command{
	Use:   "item <title>",
	Short: "Log a split item on the running activity",
	Long: `Log a split item. Without --minutes the item covers the time since the
activity's last item (or its start). WBSO only applies to Research.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runItem,
}

func init() {
	itemCmd.Flags().IntVar(&itemMinutes, "minutes", 0, "Duration in minutes")
	itemCmd.Flags().BoolVar(&itemBillable, "billable", false, "Mark the item billable")
	itemCmd.Flags().BoolVar(&itemWBSO, "wbso", false, "Mark the item as WBSO research")
	itemCmd.Flags().StringVar(&itemActivity, "activity", "", "Log on this activity instead of the running one (works while idle; the item goes into the next closed day)")
}

func runItem(cmd *cobra.Command, args []string) error {
	a := openApp(cmd.Context())
	defer a.Close()

	in := model.ItemInput{
		Title:    strings.Join(args, " "),
		Billable: itemBillable,
		WBSO:     itemWBSO,
	}
	if cmd.Flags().Changed("minutes") {
		in.Minutes = &itemMinutes
	}

	var (
		item model.SplitItem
		ok   bool
	)
	a.Do(func() error {
		if itemActivity == "" {
			item, ok = a.Activity.AddSplitItem(in)
		} else {
			item, ok = a.Activity.AddItemTo(itemActivity, in)
		}
		return nil
	})
	switch {
	case ok:
	case itemActivity == "" && !a.Activity.Running():
		exitUsage("Item not logged: the day has not started. Use fdt start, or --activity to book it on the next day.")
	default:
		exitUsage("Item not logged: it needs a title and a positive duration.")
	}
	fmt.Printf("Logged %q (%dm).\n", item.Title, item.Minutes)
	return nil
}
