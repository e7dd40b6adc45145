package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/field-day-tracker/internal/msgraph"
	"github.com/Tiliavir/field-day-tracker/internal/storage"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

var (
	outlookImportDate   string
	outlookImportDryRun bool
	outlookImportTZ     string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a day's calendar events as meeting items",
	Args:  cobra.NoArgs,
	RunE:  runOutlookImport,
}

func init() {
	outlookImportCmd.Flags().StringVar(&outlookImportDate, "date", "", "Import a specific date (YYYY-MM-DD); default today")
	outlookImportCmd.Flags().BoolVar(&outlookImportDryRun, "dry-run", false, "Print planned imports without writing")
	outlookImportCmd.Flags().StringVar(&outlookImportTZ, "timezone", "", "IANA timezone for event times (default from config)")
	outlookCmd.AddCommand(outlookImportCmd)
}

func runOutlookImport(cmd *cobra.Command, args []string) error {
	day := time.Now()
	if outlookImportDate != "" {
		d, err := time.ParseInLocation("2006-01-02", outlookImportDate, time.Local)
		if err != nil {
			exitUsage("invalid --date value %q: %v", outlookImportDate, err)
		}
		day = d
	}
	from, to := timecalc.StartOfDay(day), timecalc.EndOfDay(day)

	a := openApp(cmd.Context())
	defer a.Close()

	cfg := a.Config.Outlook
	timezone := outlookImportTZ
	if timezone == "" {
		timezone = cfg.Timezone
	}

	dryTag := ""
	if outlookImportDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Printf("Importing Outlook events of %s into %s%s...\n\n", timecalc.DateKey(from), cfg.Activity, dryTag)

	base, err := storage.BaseDir()
	if err != nil {
		exitStorage(err)
	}
	ctx := cmd.Context()
	client, err := msgraph.Authenticate(ctx, msgraph.NewTokenStore(base), cfg.TenantID, cfg.ClientID, os.Stdout, slog.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n", err)
		os.Exit(1)
	}

	events, err := client.GetCalendarView(ctx, from, to, timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch calendar events: %v\n", err)
		os.Exit(1)
	}

	var result msgraph.ImportResult
	err = a.Do(func() error {
		var err error
		result, err = msgraph.ImportEvents(a.Store, storage.For(a.User().ID), a.Bus, events, msgraph.ImportOptions{
			Activity: cfg.Activity,
			Timezone: timezone,
			Billable: cfg.Billable,
			DryRun:   outlookImportDryRun,
			Log:      slog.Default(),
		}, os.Stdout)
		return err
	})
	if err != nil {
		exitStorage(err)
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d imported\n", result.Imported)
	fmt.Printf("  %d skipped\n", result.Skipped)
	if result.Errors > 0 {
		fmt.Printf("  %d errors\n", result.Errors)
		os.Exit(2)
	}
	return nil
}
