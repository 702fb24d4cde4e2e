package render

import (
	"fmt"

	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// Mismatch describes an overlay feature whose fill color disagrees with the
// depth band table.
type Mismatch struct {
	Index int
	ID    any
	Depth float64
	Got   string
	Want  string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("feature %d (%v): depth %g has fillColor %q, want %q", m.Index, m.ID, m.Depth, m.Got, m.Want)
}

// CheckEarthquakeOverlay decodes an earthquake overlay and returns every
// feature whose style.fillColor or band label does not match its depth.
func CheckEarthquakeOverlay(data []byte) (int, []Mismatch, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return 0, nil, fmt.Errorf("decode overlay: %w", err)
	}

	var mismatches []Mismatch
	for i, f := range fc.Features {
		depth, ok := f.Properties[PropDepth].(float64)
		if !ok {
			return 0, nil, fmt.Errorf("feature %d: missing numeric %q property", i, PropDepth)
		}
		want := domain.BandFor(depth)

		got := ""
		if style, ok := f.Properties[PropStyle].(map[string]any); ok {
			got, _ = style["fillColor"].(string)
		}
		label := f.Properties.MustString(PropBand, "")

		if got != want.Color || label != want.Label {
			mismatches = append(mismatches, Mismatch{Index: i, ID: f.ID, Depth: depth, Got: got, Want: want.Color})
		}
	}
	return len(fc.Features), mismatches, nil
}
