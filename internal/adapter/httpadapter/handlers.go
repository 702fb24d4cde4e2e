package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	"github.com/couchcryptid/quake-overlay-service/internal/overlay"
)

const (
	contentTypeGeoJSON = "application/geo+json"
	headerStale        = "X-Overlay-Stale"
	headerCount        = "X-Overlay-Features"
)

// handleOverlay serves the latest GeoJSON for one overlay. Conditional
// requests are answered from the layer's update time.
func (s *Server) handleOverlay(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		layer, err := s.store.Get(name)
		if err != nil {
			if errors.Is(err, overlay.ErrNotLoaded) {
				writeError(w, http.StatusServiceUnavailable, name+" overlay has not loaded yet")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", contentTypeGeoJSON)
		w.Header().Set(headerStale, strconv.FormatBool(layer.Stale))
		w.Header().Set(headerCount, strconv.Itoa(layer.Count))
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeContent(w, r, "", layer.UpdatedAt, bytes.NewReader(layer.GeoJSON))
	})
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.Legend())
}

// layersResponse is the layer control plus a tile URL template per base
// layer, pointing back at this server's tile proxy.
type layersResponse struct {
	domain.LayerControl
	TileURLs map[string]string `json:"tileUrls"`
}

func (s *Server) handleLayers(w http.ResponseWriter, _ *http.Request) {
	resp := layersResponse{
		LayerControl: domain.NewLayerControl(s.tiles != nil),
		TileURLs:     map[string]string{},
	}
	for _, l := range resp.BaseLayers {
		resp.TileURLs[l.Slug] = "/tiles/" + l.Slug + "/{z}/{x}/{y}"
	}
	writeJSON(w, http.StatusOK, resp)
}

type styleResponse struct {
	Style domain.StyleDescriptor `json:"style"`
	Band  domain.DepthBand       `json:"band"`
}

// handleStyle styles an ad-hoc magnitude/depth pair. depth is required; an
// absent mag is treated like an unsized event.
func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	depth, err := parseFinite(q.Get("depth"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("depth: %v", err))
		return
	}

	mag := 0.0
	if raw := q.Get("mag"); raw != "" {
		if mag, err = parseFinite(raw); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("mag: %v", err))
			return
		}
	}

	writeJSON(w, http.StatusOK, styleResponse{
		Style: s.styler.StyleFor(mag, depth),
		Band:  domain.BandFor(depth),
	})
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	if s.tiles == nil {
		writeError(w, http.StatusNotFound, "tile proxy is disabled")
		return
	}
	layer, ok := domain.BaseLayerBySlug(r.PathValue("layer"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown base layer")
		return
	}

	z, errZ := strconv.Atoi(r.PathValue("z"))
	x, errX := strconv.Atoi(r.PathValue("x"))
	y, errY := strconv.Atoi(r.PathValue("y"))
	if errZ != nil || errX != nil || errY != nil || !domain.ValidTile(z, x, y) {
		writeError(w, http.StatusBadRequest, "invalid tile coordinates")
		return
	}

	tile, err := s.tiles.FetchTile(r.Context(), layer, z, x, y)
	if err != nil {
		s.logger.Warn("tile proxy failed", "layer", layer.Slug, "z", z, "x", x, "y", y, "error", err)
		writeError(w, http.StatusBadGateway, "upstream tile request failed")
		return
	}

	w.Header().Set("Content-Type", tile.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(tile.Data)
}

func parseFinite(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
