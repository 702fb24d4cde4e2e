package domain

import "time"

// EarthquakeFeature is one event decoded from the USGS feed. It is read-only
// input to the styler.
type EarthquakeFeature struct {
	ID        string
	Magnitude *float64 // nil when the feed has not sized the event yet
	Depth     float64  // km; negative above sea level
	Place     string
	Time      time.Time // zero when absent
	Lon       float64
	Lat       float64
	URL       string
}

// HasMagnitude reports whether the feed carried a magnitude for the event.
func (f EarthquakeFeature) HasMagnitude() bool {
	return f.Magnitude != nil
}

// Mag returns the magnitude, or 0 when absent.
func (f EarthquakeFeature) Mag() float64 {
	if f.Magnitude == nil {
		return 0
	}
	return *f.Magnitude
}

// Float returns a pointer to v. Handy for building features with a magnitude.
func Float(v float64) *float64 {
	return &v
}

// Fixed marker stroke styling shared by every earthquake marker.
const (
	MarkerStrokeColor   = "#FFF"
	MarkerStrokeWeight  = 1.0
	MarkerStrokeOpacity = 1.0
	MarkerFillOpacity   = 0.8
)

// StyleDescriptor is the circle-marker style for one earthquake.
type StyleDescriptor struct {
	Radius      float64 `json:"radius"`
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
}

// StyledEarthquake pairs a feature with its marker style and popup text.
type StyledEarthquake struct {
	Feature     EarthquakeFeature
	Style       StyleDescriptor
	Band        DepthBand
	Description string
	Popup       string
}

// EarthquakeFeed is the decoded result of one earthquake feed fetch.
type EarthquakeFeed struct {
	Title     string
	Generated time.Time
	Features  []EarthquakeFeature
}
