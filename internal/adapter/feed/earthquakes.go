package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-overlay-service/internal/domain"
)

// FeedEarthquakes is the metrics/log label for the USGS feed.
const FeedEarthquakes = "earthquakes"

// EarthquakeClient fetches the USGS summary feed.
type EarthquakeClient struct {
	getter *Getter
	url    string
	logger *slog.Logger
}

// NewEarthquakeClient creates a client for the USGS GeoJSON feed at url.
func NewEarthquakeClient(getter *Getter, url string, logger *slog.Logger) *EarthquakeClient {
	return &EarthquakeClient{getter: getter, url: url, logger: logger}
}

// FetchEarthquakes downloads and decodes the feed.
func (c *EarthquakeClient) FetchEarthquakes(ctx context.Context) (domain.EarthquakeFeed, error) {
	body, err := c.getter.Get(ctx, FeedEarthquakes, c.url)
	if err != nil {
		return domain.EarthquakeFeed{}, err
	}
	return ParseEarthquakes(body, c.logger)
}

// ParseEarthquakes decodes a USGS GeoJSON FeatureCollection. Features without
// a usable Point geometry are skipped and logged; a missing depth reads as 0.
func ParseEarthquakes(data []byte, logger *slog.Logger) (domain.EarthquakeFeed, error) {
	var fc usgsCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return domain.EarthquakeFeed{}, fmt.Errorf("decode earthquake feed: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return domain.EarthquakeFeed{}, fmt.Errorf("decode earthquake feed: unexpected type %q", fc.Type)
	}

	feed := domain.EarthquakeFeed{
		Title:    fc.Metadata.Title,
		Features: make([]domain.EarthquakeFeature, 0, len(fc.Features)),
	}
	if fc.Metadata.Generated > 0 {
		feed.Generated = time.UnixMilli(fc.Metadata.Generated).UTC()
	}

	for _, f := range fc.Features {
		if f.Geometry == nil || f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) < 2 {
			logger.Warn("skipping earthquake without point geometry", "id", f.ID)
			continue
		}
		feed.Features = append(feed.Features, toFeature(f))
	}
	return feed, nil
}

func toFeature(f usgsFeature) domain.EarthquakeFeature {
	coords := f.Geometry.Coordinates
	out := domain.EarthquakeFeature{
		ID:        f.ID,
		Magnitude: f.Properties.Mag,
		Lon:       coords[0],
		Lat:       coords[1],
		URL:       f.Properties.URL,
	}
	if len(coords) > 2 {
		out.Depth = coords[2]
	}
	if f.Properties.Place != nil {
		out.Place = *f.Properties.Place
	}
	if f.Properties.Time != nil {
		out.Time = time.UnixMilli(*f.Properties.Time).UTC()
	}
	return out
}

// USGS GeoJSON summary format types.

type usgsCollection struct {
	Type     string        `json:"type"`
	Metadata usgsMetadata  `json:"metadata"`
	Features []usgsFeature `json:"features"`
}

type usgsMetadata struct {
	Generated int64  `json:"generated"` // epoch ms
	Title     string `json:"title"`
	Count     int    `json:"count"`
}

type usgsFeature struct {
	ID         string         `json:"id"`
	Properties usgsProperties `json:"properties"`
	Geometry   *usgsGeometry  `json:"geometry"`
}

type usgsProperties struct {
	Mag   *float64 `json:"mag"`
	Place *string  `json:"place"`
	Time  *int64   `json:"time"` // epoch ms
	URL   string   `json:"url"`
}

type usgsGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}
