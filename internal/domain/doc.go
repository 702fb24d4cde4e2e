// Package domain models USGS earthquake events and the visual encoding used
// to draw them as map markers.
//
// # Data Source
//
// Events come from the USGS real-time summary feeds, e.g.
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson.
// Each feed is a GeoJSON FeatureCollection of Point features. Plate
// boundaries come from the PB2002 model published as GeoJSON by the
// fraxen/tectonicplates repository.
//
// # USGS Data Conventions
//
// Coordinates:
//
//	geometry.coordinates = [longitude, latitude, depth]
//	Depth is in kilometers below the surface. Events above sea level carry a
//	negative depth (e.g. -2.1 for shallow volcanic events).
//
// Magnitude:
//
//	properties.mag is a real number on the magnitude type reported in
//	properties.magType. Small events can be negative. The field is null for
//	events that have not been sized yet.
//
// Time:
//
//	properties.time is epoch milliseconds (UTC).
//
// # Visual Encoding
//
// Marker radius grows linearly with magnitude ([Styler.Radius]). Fill color is
// chosen by depth band:
//
//	depth < 10        #33FF61
//	10 <= depth < 30  #DDFF33
//	30 <= depth < 50  #FFE333
//	50 <= depth < 70  #E6B52E
//	70 <= depth < 90  #CC9329
//	depth >= 90       #A35322
//
// The legend is generated from the same band table, see [Legend].
package domain
