package mapbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	"github.com/couchcryptid/quake-overlay-service/internal/observability"
	"golang.org/x/time/rate"
)

// maxTileBytes bounds a single upstream tile response.
const maxTileBytes = 4 << 20

// Client implements domain.TileSource using the Mapbox Static Tiles API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox tile client. ratePerSecond caps upstream
// requests; bursts of up to twice that are allowed.
func NewClient(token string, timeout time.Duration, ratePerSecond float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	burst := int(ratePerSecond * 2)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/styles/v1",
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		metrics: metrics,
		logger:  logger,
	}
}

// FetchTile downloads one raster tile for the layer's style.
func (c *Client) FetchTile(ctx context.Context, layer domain.BaseLayer, z, x, y int) (domain.Tile, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.TileRequests.WithLabelValues(layer.Slug, "error").Inc()
		return domain.Tile{}, fmt.Errorf("tile rate limit: %w", err)
	}

	// The styles API serves 256 or 512 pixel tiles.
	size := 512
	if layer.TileSize == 256 {
		size = 256
	}
	u := fmt.Sprintf("%s/%s/tiles/%d/%d/%d/%d", c.baseURL, layer.StyleID, size, z, x, y)
	params := url.Values{"access_token": {c.token}}

	start := time.Now()
	tile, err := c.doRequest(ctx, u+"?"+params.Encode())
	c.metrics.TileAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.TileRequests.WithLabelValues(layer.Slug, "error").Inc()
		c.logger.Warn("mapbox tile request failed",
			"layer", layer.Slug,
			"z", z, "x", x, "y", y,
			"error", err,
		)
		return domain.Tile{}, err
	}
	c.metrics.TileRequests.WithLabelValues(layer.Slug, "success").Inc()
	return tile, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.Tile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Tile{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Tile{}, fmt.Errorf("tile request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Tile{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return domain.Tile{}, fmt.Errorf("read tile: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return domain.Tile{Data: data, ContentType: contentType}, nil
}
