package cmd

import (
	"encoding/json"

	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newLegendCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "legend",
		Short: "Print the depth legend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			legend := domain.Legend()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(legend)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Depth (km)", "Color"})
			table.SetAutoWrapText(false)
			for _, e := range legend {
				table.Append([]string{e.Label, e.Color})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
