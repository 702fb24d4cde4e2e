package domain

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlace = "10 km SSW of Idyllwild, CA"

func TestStyler_Radius(t *testing.T) {
	s := NewStyler(DefaultRadiusScale, nil)

	assert.InDelta(t, 32.5, s.Radius(5.0), 1e-9)
	assert.InDelta(t, 13.0, s.Radius(2.0), 1e-9)
	assert.Equal(t, MinRadius, s.Radius(0))
	assert.Equal(t, MinRadius, s.Radius(-0.8))
	assert.Equal(t, MinRadius, s.Radius(math.NaN()))
}

func TestStyler_RadiusStrictlyIncreasing(t *testing.T) {
	s := NewStyler(DefaultRadiusScale, nil)
	prev := s.Radius(0.01)
	for m := 0.02; m <= 10; m += 0.01 {
		r := s.Radius(m)
		require.Greater(t, r, prev, "radius not increasing at magnitude %v", m)
		prev = r
	}
}

func TestStyler_RadiusNeverNonPositive(t *testing.T) {
	s := NewStyler(DefaultRadiusScale, nil)
	for _, m := range []float64{0, 1e-9, 0.001, 0.5, 3, 9.5} {
		assert.Greater(t, s.Radius(m), 0.0, "magnitude %v", m)
	}
}

func TestNewStyler_Defaults(t *testing.T) {
	for _, scale := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		s := NewStyler(scale, nil)
		assert.Equal(t, DefaultRadiusScale, s.RadiusScale())
	}
	assert.Equal(t, 8.0, NewStyler(8, nil).RadiusScale())
}

func TestStyler_Style_Examples(t *testing.T) {
	s := NewStyler(DefaultRadiusScale, nil)

	t.Run("moderate shallow", func(t *testing.T) {
		got := s.Style(EarthquakeFeature{Magnitude: Float(5.0), Depth: 15})
		assert.Equal(t, "#DDFF33", got.Style.FillColor)
		assert.InDelta(t, DefaultRadiusScale*5.0, got.Style.Radius, 1e-9)
		assert.Equal(t, 1, got.Band.Index)
	})

	t.Run("small deep", func(t *testing.T) {
		got := s.Style(EarthquakeFeature{Magnitude: Float(2.0), Depth: 95})
		assert.Equal(t, "#A35322", got.Style.FillColor)
	})

	t.Run("zero magnitude above sea level", func(t *testing.T) {
		got := s.Style(EarthquakeFeature{Magnitude: Float(0), Depth: -5})
		assert.Equal(t, "#33FF61", got.Style.FillColor)
		assert.Equal(t, MinRadius, got.Style.Radius)
	})

	t.Run("missing magnitude", func(t *testing.T) {
		got := s.Style(EarthquakeFeature{Depth: 42})
		assert.Equal(t, MinRadius, got.Style.Radius)
		assert.Equal(t, "#FFE333", got.Style.FillColor)
		assert.Contains(t, got.Description, "Magnitude: unknown")
	})
}

func TestStyler_Style_StrokeConstants(t *testing.T) {
	got := NewStyler(DefaultRadiusScale, nil).StyleFor(4.2, 33)
	assert.Equal(t, StyleDescriptor{
		Radius:      4.2 * DefaultRadiusScale,
		FillColor:   "#FFE333",
		Color:       "#FFF",
		Weight:      1,
		Opacity:     1,
		FillOpacity: 0.8,
	}, got)
}

func TestStyler_StyleAll_PreservesOrder(t *testing.T) {
	s := NewStyler(DefaultRadiusScale, nil)
	in := []EarthquakeFeature{
		{ID: "a", Magnitude: Float(1), Depth: 5},
		{ID: "b", Magnitude: Float(2), Depth: 55},
		{ID: "c", Magnitude: Float(3), Depth: 120},
	}

	out := s.StyleAll(in)

	require.Len(t, out, 3)
	for i := range in {
		assert.Equal(t, in[i].ID, out[i].Feature.ID)
	}
	assert.Empty(t, s.StyleAll(nil))
}

func TestStyler_Describe(t *testing.T) {
	s := NewStyler(DefaultRadiusScale, time.UTC)
	f := EarthquakeFeature{
		Place:     testPlace,
		Magnitude: Float(1.47),
		Depth:     12.5,
		Time:      time.UnixMilli(1714144200000), // 2024-04-26T15:10:00Z
	}

	got := s.Describe(f)

	assert.Equal(t, testPlace+"\nDate & Time: Fri Apr 26 2024 15:10:00 UTC\nMagnitude: 1.47\nDepth: 12.5 km", got)
}

func TestStyler_Describe_Placeholders(t *testing.T) {
	s := NewStyler(DefaultRadiusScale, nil)

	got := s.Describe(EarthquakeFeature{Depth: -1.2})

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, UnknownPlaceholder, lines[0])
	assert.Equal(t, "Date & Time: unknown", lines[1])
	assert.Equal(t, "Magnitude: unknown", lines[2])
	assert.Equal(t, "Depth: -1.2 km", lines[3])
}

func TestStyler_Describe_Timezone(t *testing.T) {
	loc := time.FixedZone("PDT", -7*3600)
	s := NewStyler(DefaultRadiusScale, loc)

	got := s.Describe(EarthquakeFeature{Place: "x", Magnitude: Float(1), Time: time.UnixMilli(1714144200000)})

	assert.Contains(t, got, "Fri Apr 26 2024 08:10:00 PDT")
}

func TestStyler_Popup(t *testing.T) {
	s := NewStyler(DefaultRadiusScale, nil)
	f := EarthquakeFeature{
		Place:     "<script>alert(1)</script>",
		Magnitude: Float(3),
		Depth:     7,
		Time:      time.UnixMilli(1714144200000),
	}

	got := s.Popup(f)

	assert.True(t, strings.HasPrefix(got, "<h3>&lt;script&gt;"))
	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "<br>Magnitude: 3")
	assert.Contains(t, got, "<br>Depth: 7</p>")
	assert.Contains(t, got, "Date &amp; Time: Fri Apr 26 2024 15:10:00 UTC")
}

func TestEarthquakeFeature_Mag(t *testing.T) {
	assert.Equal(t, 0.0, EarthquakeFeature{}.Mag())
	assert.False(t, EarthquakeFeature{}.HasMagnitude())
	assert.Equal(t, 4.5, EarthquakeFeature{Magnitude: Float(4.5)}.Mag())
}
