package cmd

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/field-day-tracker/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of the running day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Log lines would tear the full-screen view.
		if !rootVerbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		}
		a := openApp(cmd.Context())
		defer a.Close()
		return tui.Run(a)
	},
}
