package domain

const (
	// OverlayEarthquakes names the earthquake marker overlay.
	OverlayEarthquakes = "Earthquakes"
	// OverlayTectonics names the plate boundary overlay.
	OverlayTectonics = "Tectonics"
)

const (
	mapboxAttribution = "© <a href='https://www.mapbox.com/about/maps/'>Mapbox</a> © <a href='http://www.openstreetmap.org/copyright'>OpenStreetMap</a> <strong><a href='https://www.mapbox.com/map-feedback/' target='_blank'>Improve this map</a></strong>"
	osmAttribution    = "Map data &copy; <a href=\"https://www.openstreetmap.org/\">OpenStreetMap</a> contributors, <a href=\"https://creativecommons.org/licenses/by-sa/2.0/\">CC-BY-SA</a>, Imagery © <a href=\"https://www.mapbox.com/\">Mapbox</a>"
)

// BaseLayer is a Mapbox style offered as a selectable base map.
type BaseLayer struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	StyleID     string `json:"styleId"`
	TileSize    int    `json:"tileSize"`
	ZoomOffset  int    `json:"zoomOffset"`
	MaxZoom     int    `json:"maxZoom"`
	Attribution string `json:"attribution"`
}

var baseLayers = []BaseLayer{
	{Slug: "satellite", Name: "Satellite", StyleID: "mapbox/satellite-v9", TileSize: 256, MaxZoom: 18, Attribution: osmAttribution},
	{Slug: "streets", Name: "Street Map", StyleID: "mapbox/streets-v11", TileSize: 512, ZoomOffset: -1, MaxZoom: 18, Attribution: mapboxAttribution},
	{Slug: "dark", Name: "Dark Map", StyleID: "mapbox/dark-v10", TileSize: 256, MaxZoom: 18, Attribution: osmAttribution},
	{Slug: "grayscale", Name: "Grayscale Map", StyleID: "mapbox/light-v10", TileSize: 512, ZoomOffset: -1, MaxZoom: 18, Attribution: mapboxAttribution},
}

// BaseLayers returns the base map catalogue in display order.
func BaseLayers() []BaseLayer {
	out := make([]BaseLayer, len(baseLayers))
	copy(out, baseLayers)
	return out
}

// BaseLayerBySlug looks up a base layer by its URL slug.
func BaseLayerBySlug(slug string) (BaseLayer, bool) {
	for _, l := range baseLayers {
		if l.Slug == slug {
			return l, true
		}
	}
	return BaseLayer{}, false
}

// MapView is the initial map center and zoom.
type MapView struct {
	Center [2]float64 `json:"center"` // lat, lon
	Zoom   float64    `json:"zoom"`
}

// DefaultView centers the map on the Atlantic so both Pacific rims are visible.
var DefaultView = MapView{Center: [2]float64{30.09, -50}, Zoom: 2.5}

// LayerControl describes the base maps and overlays a client should offer in
// its layer toggle, and which of them start enabled.
type LayerControl struct {
	BaseLayers []BaseLayer `json:"baseLayers"`
	Overlays   []string    `json:"overlays"`
	Active     []string    `json:"active"`
	View       MapView     `json:"view"`
	Collapsed  bool        `json:"collapsed"`
}

// NewLayerControl builds the default layer toggle. When withBaseLayers is
// false (no tile source configured) only the overlays are listed.
func NewLayerControl(withBaseLayers bool) LayerControl {
	lc := LayerControl{
		BaseLayers: []BaseLayer{},
		Overlays:   []string{OverlayEarthquakes, OverlayTectonics},
		Active:     []string{OverlayEarthquakes, OverlayTectonics},
		View:       DefaultView,
	}
	if withBaseLayers {
		lc.BaseLayers = BaseLayers()
		lc.Active = append([]string{baseLayers[0].Name}, lc.Active...)
	}
	return lc
}
