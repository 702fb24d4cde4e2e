// Package pipeline keeps the earthquake and tectonic overlays fresh. Each
// overlay has its own fetch-style-render-store loop so an outage of one feed
// never holds back the other.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	"github.com/couchcryptid/quake-overlay-service/internal/observability"
	"github.com/couchcryptid/quake-overlay-service/internal/overlay"
	"github.com/couchcryptid/quake-overlay-service/internal/render"
	"github.com/google/uuid"
)

const initialBackoff = 200 * time.Millisecond

// EarthquakeFetcher reads the current earthquake feed.
type EarthquakeFetcher interface {
	FetchEarthquakes(ctx context.Context) (domain.EarthquakeFeed, error)
}

// PlateFetcher reads the plate boundary dataset.
type PlateFetcher interface {
	FetchPlates(ctx context.Context) ([]domain.PlateBoundary, error)
}

// Publisher receives the styled earthquakes of each successful refresh.
type Publisher interface {
	PublishEarthquakes(ctx context.Context, quakes []domain.StyledEarthquake, fetchedAt time.Time) error
}

// SnapshotStore persists the last good rendering of each overlay.
type SnapshotStore interface {
	Save(layer overlay.Layer) error
	Load(name string) (overlay.Layer, bool, error)
}

// Options holds the optional collaborators of a Pipeline.
type Options struct {
	// Interval between successful refreshes of one overlay.
	Interval  time.Duration
	Publisher Publisher
	Snapshots SnapshotStore
}

// Pipeline orchestrates the per-overlay refresh loops.
type Pipeline struct {
	quakes    EarthquakeFetcher
	plates    PlateFetcher
	styler    *domain.Styler
	store     *overlay.Store
	publisher Publisher
	snapshots SnapshotStore
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
	refreshed atomic.Bool
}

// New creates a Pipeline that writes into store.
func New(quakes EarthquakeFetcher, plates PlateFetcher, styler *domain.Styler, store *overlay.Store, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Pipeline{
		quakes:    quakes,
		plates:    plates,
		styler:    styler,
		store:     store,
		publisher: opts.Publisher,
		snapshots: opts.Snapshots,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once any overlay can be served, whether fetched
// or restored from a snapshot.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	return p.store.CheckReadiness(ctx)
}

// Refreshed reports whether at least one overlay has been fetched from
// upstream since startup.
func (p *Pipeline) Refreshed() bool {
	return p.refreshed.Load()
}

// Run restores snapshots and then refreshes both overlays until the context
// is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval)
	p.metrics.RefreshRunning.Set(1)
	defer p.metrics.RefreshRunning.Set(0)

	p.Restore()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.loop(ctx, overlay.Earthquakes, p.RefreshEarthquakes)
	}()
	go func() {
		defer wg.Done()
		p.loop(ctx, overlay.Tectonics, p.RefreshPlates)
	}()
	wg.Wait()

	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// Restore loads persisted overlays into the store. Layers already present
// are left alone.
func (p *Pipeline) Restore() {
	if p.snapshots == nil {
		return
	}
	for _, name := range []string{overlay.Earthquakes, overlay.Tectonics} {
		if _, err := p.store.Get(name); err == nil {
			continue
		}
		layer, ok, err := p.snapshots.Load(name)
		if err != nil {
			p.logger.Warn("snapshot restore failed", "overlay", name, "error", err)
			continue
		}
		if !ok {
			continue
		}
		p.store.Put(layer)
		p.metrics.OverlayFeatures.WithLabelValues(name).Set(float64(layer.Count))
		p.logger.Info("overlay restored from snapshot",
			"overlay", name,
			"features", layer.Count,
			"updated_at", layer.UpdatedAt,
		)
	}
}

// loop runs refresh on a fixed interval, backing off exponentially after
// failures. The backoff never exceeds the refresh interval.
func (p *Pipeline) loop(ctx context.Context, name string, refresh func(context.Context) error) {
	backoff := initialBackoff
	for ctx.Err() == nil {
		if err := refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.metrics.RefreshErrors.WithLabelValues(name).Inc()
			if !sleepWithContext(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, p.interval)
			continue
		}
		backoff = initialBackoff
		if !sleepWithContext(ctx, p.interval) {
			return
		}
	}
}

// RefreshEarthquakes runs one earthquake cycle: fetch, style, render, store,
// then snapshot and publish when configured.
func (p *Pipeline) RefreshEarthquakes(ctx context.Context) error {
	logger := p.logger.With("overlay", overlay.Earthquakes, "cycle_id", uuid.NewString())
	start := time.Now()

	feed, err := p.quakes.FetchEarthquakes(ctx)
	if err != nil {
		logger.Error("overlay refresh failed", "stage", "fetch", "error", err)
		return err
	}

	styled := p.styler.StyleAll(feed.Features)
	data, err := render.EarthquakesGeoJSON(styled)
	if err != nil {
		logger.Error("overlay refresh failed", "stage", "render", "error", err)
		return err
	}
	p.metrics.FeaturesStyled.Add(float64(len(styled)))

	fetchedAt := domain.Now()
	p.commit(logger, overlay.Layer{
		Name:      overlay.Earthquakes,
		GeoJSON:   data,
		Count:     len(styled),
		UpdatedAt: fetchedAt,
	})

	if p.publisher != nil {
		// The overlay is already served; a broker outage only costs this
		// cycle's events.
		if err := p.publisher.PublishEarthquakes(ctx, styled, fetchedAt); err != nil {
			logger.Warn("publish earthquakes failed", "error", err)
		} else {
			p.metrics.EventsPublished.Add(float64(len(styled)))
		}
	}

	logger.Info("overlay refreshed",
		"features", len(styled),
		"feed_title", feed.Title,
		"duration", time.Since(start),
	)
	return nil
}

// RefreshPlates runs one tectonic cycle: fetch, render, store, snapshot.
func (p *Pipeline) RefreshPlates(ctx context.Context) error {
	logger := p.logger.With("overlay", overlay.Tectonics, "cycle_id", uuid.NewString())
	start := time.Now()

	plates, err := p.plates.FetchPlates(ctx)
	if err != nil {
		logger.Error("overlay refresh failed", "stage", "fetch", "error", err)
		return err
	}

	data, err := render.PlatesGeoJSON(plates)
	if err != nil {
		logger.Error("overlay refresh failed", "stage", "render", "error", err)
		return fmt.Errorf("render plates: %w", err)
	}

	p.commit(logger, overlay.Layer{
		Name:      overlay.Tectonics,
		GeoJSON:   data,
		Count:     len(plates),
		UpdatedAt: domain.Now(),
	})

	logger.Info("overlay refreshed", "features", len(plates), "duration", time.Since(start))
	return nil
}

// commit publishes a freshly rendered layer to readers and persists it.
func (p *Pipeline) commit(logger *slog.Logger, layer overlay.Layer) {
	p.store.Put(layer)
	p.refreshed.Store(true)
	p.metrics.OverlayFeatures.WithLabelValues(layer.Name).Set(float64(layer.Count))
	p.metrics.OverlayLastSuccess.WithLabelValues(layer.Name).Set(float64(layer.UpdatedAt.Unix()))

	if p.snapshots == nil {
		return
	}
	if err := p.snapshots.Save(layer); err != nil {
		logger.Warn("snapshot save failed", "error", err)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
