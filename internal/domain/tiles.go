package domain

import "context"

// MaxTileZoom is the deepest zoom level served for base-map tiles.
const MaxTileZoom = 22

// Tile is one raster base-map tile.
type Tile struct {
	Data        []byte
	ContentType string
}

// TileSource fetches base-map tiles for a layer.
type TileSource interface {
	FetchTile(ctx context.Context, layer BaseLayer, z, x, y int) (Tile, error)
}

// ValidTile reports whether z/x/y addresses a tile in the Web Mercator
// pyramid up to MaxTileZoom.
func ValidTile(z, x, y int) bool {
	if z < 0 || z > MaxTileZoom {
		return false
	}
	n := 1 << z
	return x >= 0 && x < n && y >= 0 && y < n
}
