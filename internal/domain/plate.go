package domain

import "github.com/paulmach/orb"

// PlateBoundary is one tectonic plate outline from the PB2002 model.
type PlateBoundary struct {
	Name     string
	Code     string
	Geometry orb.Geometry
}

// LineStyle is the path style for plate outlines.
type LineStyle struct {
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	FillOpacity float64 `json:"fillOpacity"`
}

// PlateStyle is applied to every plate boundary.
var PlateStyle = LineStyle{
	Color:       "orange",
	Weight:      2.5,
	FillOpacity: 0,
}
