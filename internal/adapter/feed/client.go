package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/couchcryptid/quake-overlay-service/internal/observability"
)

// maxBodyBytes caps feed payloads. The USGS all_month feed is ~10 MB and the
// PB2002 plates file ~3 MB.
const maxBodyBytes = 64 << 20

// Getter downloads feed documents over HTTP with retry.
type Getter struct {
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewGetter creates a Getter. timeout bounds each attempt; attempts is the
// total number of tries per Get.
func NewGetter(timeout time.Duration, attempts int, metrics *observability.Metrics, logger *slog.Logger) *Getter {
	if attempts < 1 {
		attempts = 1
	}
	return &Getter{
		httpClient: &http.Client{Timeout: timeout},
		attempts:   uint(attempts),
		delay:      500 * time.Millisecond,
		metrics:    metrics,
		logger:     logger,
	}
}

// statusError is returned for non-200 upstream responses.
type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("feed API error: status %d: %s", e.status, e.body)
}

// Get fetches url and returns the body. Network errors, 429 and 5xx responses
// are retried with exponential backoff; other 4xx responses fail immediately.
func (g *Getter) Get(ctx context.Context, name, url string) ([]byte, error) {
	start := time.Now()

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			return g.fetch(ctx, url)
		},
		retry.Context(ctx),
		retry.Attempts(g.attempts),
		retry.Delay(g.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			g.logger.Warn("feed request failed, retrying",
				"feed", name,
				"attempt", n+1,
				"error", err,
			)
		}),
	)

	g.metrics.FeedDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		g.metrics.FeedRequests.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("fetch %s feed: %w", name, err)
	}
	g.metrics.FeedRequests.WithLabelValues(name, "success").Inc()
	return body, nil
}

func (g *Getter) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{status: resp.StatusCode, body: body}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func retryable(err error) bool {
	var se *statusError
	if !errors.As(err, &se) {
		return true
	}
	return se.status == http.StatusTooManyRequests || se.status >= 500
}
