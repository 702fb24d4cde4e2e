package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// FeedPlates is the metrics/log label for the plate boundary feed.
const FeedPlates = "tectonics"

// PlateClient fetches the PB2002 plate boundary GeoJSON.
type PlateClient struct {
	getter *Getter
	url    string
	logger *slog.Logger
}

// NewPlateClient creates a client for the plate GeoJSON document at url.
func NewPlateClient(getter *Getter, url string, logger *slog.Logger) *PlateClient {
	return &PlateClient{getter: getter, url: url, logger: logger}
}

// FetchPlates downloads and decodes the plate boundaries.
func (c *PlateClient) FetchPlates(ctx context.Context) ([]domain.PlateBoundary, error) {
	body, err := c.getter.Get(ctx, FeedPlates, c.url)
	if err != nil {
		return nil, err
	}
	return ParsePlates(body, c.logger)
}

// ParsePlates decodes a GeoJSON FeatureCollection of plate outlines. Features
// without geometry are skipped.
func ParsePlates(data []byte, logger *slog.Logger) ([]domain.PlateBoundary, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode plate feed: %w", err)
	}

	plates := make([]domain.PlateBoundary, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			logger.Warn("skipping plate without geometry", "index", i)
			continue
		}
		plates = append(plates, domain.PlateBoundary{
			Name:     f.Properties.MustString("PlateName", ""),
			Code:     f.Properties.MustString("Code", ""),
			Geometry: f.Geometry,
		})
	}
	return plates, nil
}
