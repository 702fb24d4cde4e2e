package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/quake-overlay-service/internal/adapter/feed"
	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	"github.com/couchcryptid/quake-overlay-service/internal/observability"
	"github.com/couchcryptid/quake-overlay-service/internal/render"
	"github.com/spf13/cobra"
)

const liveFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson"

type styleOptions struct {
	in       string
	out      string
	fetch    bool
	feedURL  string
	scale    float64
	timezone string
}

func newStyleCmd() *cobra.Command {
	var opts styleOptions
	cmd := &cobra.Command{
		Use:   "style",
		Short: "Style a USGS earthquake GeoJSON feed into an overlay",
		Example: `  # Style a saved feed
  quakectl style --in all_week.geojson --out overlay.geojson

  # Style the live weekly feed with Pacific display times
  quakectl style --fetch --tz America/Los_Angeles`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStyle(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.in, "in", "", "USGS GeoJSON file to style (- for stdin)")
	cmd.Flags().StringVar(&opts.out, "out", "", "overlay output file (default stdout)")
	cmd.Flags().BoolVar(&opts.fetch, "fetch", false, "fetch the feed instead of reading --in")
	cmd.Flags().StringVar(&opts.feedURL, "feed-url", liveFeedURL, "feed fetched with --fetch")
	cmd.Flags().Float64Var(&opts.scale, "scale", domain.DefaultRadiusScale, "marker radius per unit of magnitude")
	cmd.Flags().StringVar(&opts.timezone, "tz", "UTC", "IANA time zone for popup times")
	cmd.MarkFlagsMutuallyExclusive("in", "fetch")
	cmd.MarkFlagsOneRequired("in", "fetch")
	return cmd
}

func runStyle(cmd *cobra.Command, opts styleOptions) error {
	logger := cmdLogger(cmd)

	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid --tz: %w", err)
	}

	var quakes domain.EarthquakeFeed
	if opts.fetch {
		getter := feed.NewGetter(30*time.Second, 3, observability.NewMetrics(), logger)
		quakes, err = feed.NewEarthquakeClient(getter, opts.feedURL, logger).FetchEarthquakes(cmd.Context())
	} else {
		var data []byte
		data, err = readInput(cmd, opts.in)
		if err != nil {
			return err
		}
		quakes, err = feed.ParseEarthquakes(data, logger)
	}
	if err != nil {
		return err
	}

	styled := domain.NewStyler(opts.scale, loc).StyleAll(quakes.Features)
	data, err := render.EarthquakesGeoJSON(styled)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd, opts.out, data); err != nil {
		return err
	}
	logger.Info("overlay written", "features", len(styled), "out", opts.out)
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write overlay: %w", err)
	}
	return nil
}
