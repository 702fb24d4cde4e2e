package domain

import "math"

// DepthBand is one contiguous depth range bound to a palette color. A band
// covers [Lower, next band's Lower).
type DepthBand struct {
	Index int     `json:"index"`
	Lower float64 `json:"-"` // -Inf for the first band
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// depthBands is the single source of truth for the depth palette. Bands are
// ordered by ascending Lower; the first band is open below and the last is
// open above, so every real depth falls in exactly one band.
var depthBands = [...]DepthBand{
	{Index: 0, Lower: math.Inf(-1), Label: "-10—9", Color: "#33FF61"},
	{Index: 1, Lower: 10, Label: "10—29", Color: "#DDFF33"},
	{Index: 2, Lower: 30, Label: "30—49", Color: "#FFE333"},
	{Index: 3, Lower: 50, Label: "50—69", Color: "#E6B52E"},
	{Index: 4, Lower: 70, Label: "70—89", Color: "#CC9329"},
	{Index: 5, Lower: 90, Label: "90+", Color: "#A35322"},
}

// bandsByLabel is derived from depthBands at init.
var bandsByLabel = func() map[string]DepthBand {
	m := make(map[string]DepthBand, len(depthBands))
	for _, b := range depthBands {
		m[b.Label] = b
	}
	return m
}()

// DepthBands returns a copy of the band table in ascending depth order.
func DepthBands() []DepthBand {
	out := make([]DepthBand, len(depthBands))
	copy(out, depthBands[:])
	return out
}

// BandFor returns the band containing depth. NaN falls into the first band.
func BandFor(depth float64) DepthBand {
	for i := len(depthBands) - 1; i > 0; i-- {
		if depth >= depthBands[i].Lower {
			return depthBands[i]
		}
	}
	return depthBands[0]
}

// ColorFor returns the fill color for depth.
func ColorFor(depth float64) string {
	return BandFor(depth).Color
}

// BandLabelOf returns the legend label of the band containing depth.
func BandLabelOf(depth float64) string {
	return BandFor(depth).Label
}

// ColorForLabel returns the color bound to a legend label. The boolean is
// false for labels that are not in the band table.
func ColorForLabel(label string) (string, bool) {
	b, ok := bandsByLabel[label]
	if !ok {
		return "", false
	}
	return b.Color, true
}

// LegendEntry is one row of the depth legend.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend returns the six legend rows in ascending depth order.
func Legend() []LegendEntry {
	out := make([]LegendEntry, 0, len(depthBands))
	for _, b := range depthBands {
		out = append(out, LegendEntry{Label: b.Label, Color: b.Color})
	}
	return out
}
