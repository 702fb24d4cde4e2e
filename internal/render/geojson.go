// Package render encodes styled overlays as GeoJSON for map clients.
package render

import (
	"fmt"

	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Property keys written on every earthquake feature.
const (
	PropMagnitude   = "mag"
	PropPlace       = "place"
	PropTime        = "time"
	PropDepth       = "depth"
	PropBand        = "band"
	PropStyle       = "style"
	PropDescription = "description"
	PropPopup       = "popup"
	PropURL         = "url"
)

// EarthquakesGeoJSON encodes styled earthquakes as a FeatureCollection of
// Points. Depth is carried in properties since orb points are 2D. Absent
// magnitude and time are written as null.
func EarthquakesGeoJSON(quakes []domain.StyledEarthquake) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(quakes))

	for _, q := range quakes {
		f := geojson.NewFeature(orb.Point{q.Feature.Lon, q.Feature.Lat})
		if q.Feature.ID != "" {
			f.ID = q.Feature.ID
		}
		f.Properties[PropMagnitude] = q.Feature.Magnitude
		f.Properties[PropPlace] = q.Feature.Place
		f.Properties[PropTime] = nil
		if !q.Feature.Time.IsZero() {
			f.Properties[PropTime] = q.Feature.Time.UnixMilli()
		}
		f.Properties[PropDepth] = q.Feature.Depth
		f.Properties[PropBand] = q.Band.Label
		f.Properties[PropStyle] = q.Style
		f.Properties[PropDescription] = q.Description
		f.Properties[PropPopup] = q.Popup
		if q.Feature.URL != "" {
			f.Properties[PropURL] = q.Feature.URL
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode earthquake overlay: %w", err)
	}
	return data, nil
}

// PlatesGeoJSON encodes plate outlines with the fixed line style.
func PlatesGeoJSON(plates []domain.PlateBoundary) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(plates))

	for _, p := range plates {
		f := geojson.NewFeature(p.Geometry)
		f.Properties["name"] = p.Name
		f.Properties["code"] = p.Code
		f.Properties[PropStyle] = domain.PlateStyle
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode plate overlay: %w", err)
	}
	return data, nil
}
