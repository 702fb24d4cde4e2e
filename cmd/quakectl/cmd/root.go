package cmd

import (
	"log/slog"

	"github.com/couchcryptid/quake-overlay-service/internal/observability"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the quakectl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "quakectl",
		Short:         "Earthquake overlay tooling",
		Long:          "Style USGS earthquake feeds, print the depth legend, and validate rendered overlays.",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newLegendCmd(),
		newStyleCmd(),
		newValidateCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// cmdLogger logs to the command's stderr so stdout stays machine-readable.
func cmdLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return observability.NewLoggerTo(cmd.ErrOrStderr(), level, "text")
}
