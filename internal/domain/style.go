package domain

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"time"
)

const (
	// DefaultRadiusScale converts magnitude to marker radius in pixels.
	DefaultRadiusScale = 6.5

	// MinRadius is the radius used for unsized or non-positive magnitudes.
	MinRadius = 1.0

	// UnknownPlaceholder replaces absent place, time, or magnitude in text.
	UnknownPlaceholder = "unknown"

	// displayTimeLayout renders event times in popups and descriptions.
	displayTimeLayout = "Mon Jan 2 2006 15:04:05 MST"
)

// Styler maps earthquake features to marker styles and popup text. A Styler
// holds only immutable settings and is safe for concurrent use.
type Styler struct {
	radiusScale float64
	location    *time.Location
}

// NewStyler creates a Styler. A non-positive scale falls back to
// DefaultRadiusScale and a nil location to UTC.
func NewStyler(radiusScale float64, loc *time.Location) *Styler {
	if radiusScale <= 0 || math.IsNaN(radiusScale) || math.IsInf(radiusScale, 0) {
		radiusScale = DefaultRadiusScale
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Styler{radiusScale: radiusScale, location: loc}
}

// RadiusScale returns the configured magnitude-to-radius factor.
func (s *Styler) RadiusScale() float64 {
	return s.radiusScale
}

// Radius returns the marker radius for a magnitude. Positive magnitudes scale
// linearly; anything else (zero, negative, NaN) gets MinRadius.
func (s *Styler) Radius(mag float64) float64 {
	if mag <= 0 || math.IsNaN(mag) {
		return MinRadius
	}
	return mag * s.radiusScale
}

// StyleFor computes the marker style for a magnitude/depth pair.
func (s *Styler) StyleFor(mag, depth float64) StyleDescriptor {
	return StyleDescriptor{
		Radius:      s.Radius(mag),
		FillColor:   ColorFor(depth),
		Color:       MarkerStrokeColor,
		Weight:      MarkerStrokeWeight,
		Opacity:     MarkerStrokeOpacity,
		FillOpacity: MarkerFillOpacity,
	}
}

// Style computes the full visual encoding of one feature.
func (s *Styler) Style(f EarthquakeFeature) StyledEarthquake {
	return StyledEarthquake{
		Feature:     f,
		Style:       s.StyleFor(f.Mag(), f.Depth),
		Band:        BandFor(f.Depth),
		Description: s.Describe(f),
		Popup:       s.Popup(f),
	}
}

// StyleAll styles every feature, preserving input order.
func (s *Styler) StyleAll(features []EarthquakeFeature) []StyledEarthquake {
	out := make([]StyledEarthquake, len(features))
	for i := range features {
		out[i] = s.Style(features[i])
	}
	return out
}

// Describe renders a plain-text summary of the feature.
func (s *Styler) Describe(f EarthquakeFeature) string {
	return fmt.Sprintf("%s\nDate & Time: %s\nMagnitude: %s\nDepth: %s km",
		placeText(f.Place), s.timeText(f.Time), magText(f), formatNumber(f.Depth))
}

// Popup renders the feature as an HTML fragment for a marker popup. Values
// from the feed are escaped.
func (s *Styler) Popup(f EarthquakeFeature) string {
	return "<h3>" + html.EscapeString(placeText(f.Place)) +
		"</h3><hr><p>Date &amp; Time: " + html.EscapeString(s.timeText(f.Time)) +
		"<br>Magnitude: " + html.EscapeString(magText(f)) +
		"<br>Depth: " + formatNumber(f.Depth) + "</p>"
}

func (s *Styler) timeText(t time.Time) string {
	if t.IsZero() {
		return UnknownPlaceholder
	}
	return t.In(s.location).Format(displayTimeLayout)
}

func placeText(place string) string {
	if place == "" {
		return UnknownPlaceholder
	}
	return place
}

func magText(f EarthquakeFeature) string {
	if !f.HasMagnitude() {
		return UnknownPlaceholder
	}
	return formatNumber(*f.Magnitude)
}

// formatNumber prints the shortest representation that round-trips, so 5
// stays "5" and 4.37 stays "4.37".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
