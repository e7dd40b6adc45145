package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/field-day-tracker/internal/app"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/storage"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

var (
	rootUser    string
	rootVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fdt",
	Short: "Field Day Tracker – activities, trips and receipts of a field workday",
	Long: `fdt tracks a field workday: time per activity with split items,
trips between locations with distances, and receipts. The day is closed
into a capped day log. State lives in ~/.fdt/ (or $FDT_HOME), shared by
every running view (CLI, fdt serve, fdt watch).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if rootVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootUser, "user", "", "Act as this user id without switching the current user")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Log debug details to stderr")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(tripCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(daylogCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(receiptCmd)
	rootCmd.AddCommand(locationCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(outlookCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

// openApp opens the view for this command. Storage problems exit with 2.
func openApp(ctx context.Context) *app.App {
	base, err := storage.BaseDir()
	if err != nil {
		exitStorage(err)
	}
	a, err := app.Open(ctx, app.Options{Base: base, UserID: rootUser, Log: slog.Default()})
	if err != nil {
		exitStorage(err)
	}
	return a
}

func exitStorage(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}

func exitUsage(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// printActivities lists per-activity totals and items, sorted by name.
func printActivities(per map[string]model.ActivityTotal) {
	names := make([]string, 0, len(per))
	for name := range per {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := per[name]
		fmt.Printf("  %-14s%s\n", name, timecalc.FormatMs(t.Ms))
		for _, it := range t.Items {
			flags := ""
			if it.Billable {
				flags += " billable"
			}
			if it.WBSO {
				flags += " wbso"
			}
			fmt.Printf("    - %s (%dm)%s\n", it.Title, it.Minutes, flags)
		}
	}
}

func printLegs(legs []model.TripLeg) {
	for _, l := range legs {
		end := "ongoing"
		if l.EndTime != nil {
			end = l.EndTime.Format("15:04")
		}
		fmt.Printf("  %s–%s  %s → %s  %.2f km", l.StartTime.Format("15:04"), end, l.StartName, l.EndName, l.Km)
		if l.Note != "" {
			fmt.Printf("  (%s)", l.Note)
		}
		fmt.Println()
	}
}
