package cmd

import (
	"fmt"
	"os"

	"github.com/couchcryptid/quake-overlay-service/internal/render"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check an overlay's marker colors against its depths",
		Long: "Decodes a rendered earthquake overlay and verifies that every feature's " +
			"style.fillColor and band label match the depth band of its depth property.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read overlay: %w", err)
			}

			total, mismatches, err := render.CheckEarthquakeOverlay(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range mismatches {
				fmt.Fprintf(out, "  FAIL  %s\n", m)
			}
			if len(mismatches) > 0 {
				return fmt.Errorf("%d of %d features have mismatched colors", len(mismatches), total)
			}
			fmt.Fprintf(out, "  PASS  %d features checked\n", total)
			return nil
		},
	}
}
