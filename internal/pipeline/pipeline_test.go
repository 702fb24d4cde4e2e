package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	"github.com/couchcryptid/quake-overlay-service/internal/observability"
	"github.com/couchcryptid/quake-overlay-service/internal/overlay"
	"github.com/couchcryptid/quake-overlay-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockQuakes struct {
	feed  domain.EarthquakeFeed
	err   error
	calls atomic.Int64
}

func (m *mockQuakes) FetchEarthquakes(ctx context.Context) (domain.EarthquakeFeed, error) {
	m.calls.Add(1)
	if m.err != nil {
		return domain.EarthquakeFeed{}, m.err
	}
	return m.feed, ctx.Err()
}

type mockPlates struct {
	plates []domain.PlateBoundary
	err    error
	calls  atomic.Int64
}

func (m *mockPlates) FetchPlates(ctx context.Context) ([]domain.PlateBoundary, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.plates, ctx.Err()
}

type mockPublisher struct {
	mu        sync.Mutex
	published []domain.StyledEarthquake
	fetchedAt time.Time
	err       error
}

func (m *mockPublisher) PublishEarthquakes(_ context.Context, quakes []domain.StyledEarthquake, fetchedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, quakes...)
	m.fetchedAt = fetchedAt
	return nil
}

type mockSnapshots struct {
	mu     sync.Mutex
	layers map[string]overlay.Layer
}

func newMockSnapshots(layers ...overlay.Layer) *mockSnapshots {
	m := &mockSnapshots{layers: make(map[string]overlay.Layer)}
	for _, l := range layers {
		m.layers[l.Name] = l
	}
	return m
}

func (m *mockSnapshots) Save(layer overlay.Layer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layers[layer.Name] = layer
	return nil
}

func (m *mockSnapshots) Load(name string) (overlay.Layer, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.layers[name]
	if ok {
		l.Stale = true
	}
	return l, ok, nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)

func useFakeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(fixedNow))
	t.Cleanup(func() {
		domain.SetClock(nil)
	})
}

func sampleFeed() domain.EarthquakeFeed {
	return domain.EarthquakeFeed{
		Title: "USGS All Earthquakes, Past Week",
		Features: []domain.EarthquakeFeature{
			{ID: "us1", Magnitude: domain.Float(5.0), Depth: 15, Place: "Fiji", Lon: 178.1, Lat: -17.9},
			{ID: "ci2", Magnitude: domain.Float(2.0), Depth: 95, Place: "Ridgecrest", Lon: -117.6, Lat: 35.7},
			{ID: "nc3", Depth: 42, Lon: -122.8, Lat: 38.8},
		},
	}
}

func samplePlates() []domain.PlateBoundary {
	return []domain.PlateBoundary{
		{Name: "Africa", Code: "AF", Geometry: orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}}},
	}
}

func newPipeline(q pipeline.EarthquakeFetcher, p pipeline.PlateFetcher, store *overlay.Store, opts pipeline.Options, metrics *observability.Metrics) *pipeline.Pipeline {
	styler := domain.NewStyler(domain.DefaultRadiusScale, time.UTC)
	return pipeline.New(q, p, styler, store, opts, discardLogger(), metrics)
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	useFakeClock(t)
	store := overlay.NewStore()
	pub := &mockPublisher{}
	snaps := newMockSnapshots()
	metrics := newTestMetrics()

	p := newPipeline(&mockQuakes{feed: sampleFeed()}, &mockPlates{plates: samplePlates()}, store,
		pipeline.Options{Interval: time.Hour, Publisher: pub, Snapshots: snaps}, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	quakes, err := store.Get(overlay.Earthquakes)
	require.NoError(t, err)
	assert.Equal(t, 3, quakes.Count)
	assert.Equal(t, fixedNow, quakes.UpdatedAt)
	assert.False(t, quakes.Stale)

	plates, err := store.Get(overlay.Tectonics)
	require.NoError(t, err)
	assert.Equal(t, 1, plates.Count)

	require.Len(t, pub.published, 3)
	assert.Equal(t, "#DDFF33", pub.published[0].Style.FillColor)
	assert.Equal(t, fixedNow, pub.fetchedAt)

	assert.Contains(t, snaps.layers, overlay.Earthquakes)
	assert.Contains(t, snaps.layers, overlay.Tectonics)

	assert.True(t, p.Refreshed())
	require.NoError(t, p.CheckReadiness(context.Background()))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.FeaturesStyled))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.EventsPublished))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.OverlayFeatures.WithLabelValues(overlay.Earthquakes)))
	assert.Equal(t, float64(fixedNow.Unix()), testutil.ToFloat64(metrics.OverlayLastSuccess.WithLabelValues(overlay.Tectonics)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.RefreshRunning))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	store := overlay.NewStore()
	quakes := &mockQuakes{feed: sampleFeed()}
	plates := &mockPlates{plates: samplePlates()}

	p := newPipeline(quakes, plates, store, pipeline.Options{Interval: time.Hour}, newTestMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	require.NoError(t, p.Run(ctx))
	assert.Zero(t, quakes.calls.Load())
	assert.Zero(t, plates.calls.Load())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_FeedsAreIndependent(t *testing.T) {
	store := overlay.NewStore()
	metrics := newTestMetrics()
	plates := &mockPlates{err: errors.New("plate host down")}

	p := newPipeline(&mockQuakes{feed: sampleFeed()}, plates, store, pipeline.Options{Interval: time.Hour}, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	_, err := store.Get(overlay.Earthquakes)
	require.NoError(t, err)
	_, err = store.Get(overlay.Tectonics)
	require.ErrorIs(t, err, overlay.ErrNotLoaded)

	// 200ms then 400ms backoff: at least two attempts inside the window.
	assert.GreaterOrEqual(t, plates.calls.Load(), int64(2))
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.RefreshErrors.WithLabelValues(overlay.Tectonics)), 2.0)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.RefreshErrors.WithLabelValues(overlay.Earthquakes)))
}

func TestPipeline_Run_RefreshesOnInterval(t *testing.T) {
	quakes := &mockQuakes{feed: sampleFeed()}
	p := newPipeline(quakes, &mockPlates{plates: samplePlates()}, overlay.NewStore(),
		pipeline.Options{Interval: 50 * time.Millisecond}, newTestMetrics())

	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.GreaterOrEqual(t, quakes.calls.Load(), int64(3))
}

func TestPipeline_Run_PublishFailureKeepsOverlay(t *testing.T) {
	store := overlay.NewStore()
	metrics := newTestMetrics()
	pub := &mockPublisher{err: errors.New("broker unavailable")}
	p := newPipeline(&mockQuakes{feed: sampleFeed()}, &mockPlates{plates: samplePlates()}, store,
		pipeline.Options{Interval: time.Hour, Publisher: pub}, metrics)

	require.NoError(t, p.RefreshEarthquakes(context.Background()))

	layer, err := store.Get(overlay.Earthquakes)
	require.NoError(t, err)
	assert.Equal(t, 3, layer.Count)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.EventsPublished))
}

func TestPipeline_RefreshEarthquakes_FailureLeavesPreviousLayer(t *testing.T) {
	store := overlay.NewStore()
	previous := overlay.Layer{Name: overlay.Earthquakes, GeoJSON: []byte(`{}`), Count: 7, UpdatedAt: fixedNow}
	store.Put(previous)

	p := newPipeline(&mockQuakes{err: errors.New("timeout")}, &mockPlates{}, store, pipeline.Options{}, newTestMetrics())

	require.Error(t, p.RefreshEarthquakes(context.Background()))

	got, err := store.Get(overlay.Earthquakes)
	require.NoError(t, err)
	assert.Equal(t, previous, got)
	assert.False(t, p.Refreshed())
}

func TestPipeline_RefreshEarthquakes_RendersStyledGeoJSON(t *testing.T) {
	store := overlay.NewStore()
	p := newPipeline(&mockQuakes{feed: sampleFeed()}, &mockPlates{}, store, pipeline.Options{}, newTestMetrics())

	require.NoError(t, p.RefreshEarthquakes(context.Background()))

	layer, err := store.Get(overlay.Earthquakes)
	require.NoError(t, err)

	var doc struct {
		Features []struct {
			Properties struct {
				Band  string                 `json:"band"`
				Style domain.StyleDescriptor `json:"style"`
			} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(layer.GeoJSON, &doc))

	type summary struct {
		Band   string
		Color  string
		Radius float64
	}
	got := make([]summary, 0, len(doc.Features))
	for _, f := range doc.Features {
		got = append(got, summary{f.Properties.Band, f.Properties.Style.FillColor, f.Properties.Style.Radius})
	}
	want := []summary{
		{"10—29", "#DDFF33", 32.5},
		{"90+", "#A35322", 13},
		{"30—49", "#FFE333", domain.MinRadius},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("styled overlay mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_Restore(t *testing.T) {
	store := overlay.NewStore()
	snaps := newMockSnapshots(overlay.Layer{Name: overlay.Tectonics, GeoJSON: []byte(`{"type":"FeatureCollection","features":[]}`), Count: 52, UpdatedAt: fixedNow})
	metrics := newTestMetrics()

	p := newPipeline(&mockQuakes{}, &mockPlates{}, store, pipeline.Options{Snapshots: snaps}, metrics)
	p.Restore()

	layer, err := store.Get(overlay.Tectonics)
	require.NoError(t, err)
	assert.True(t, layer.Stale)
	assert.Equal(t, 52, layer.Count)
	require.NoError(t, p.CheckReadiness(context.Background()))
	assert.False(t, p.Refreshed())

	_, err = store.Get(overlay.Earthquakes)
	require.ErrorIs(t, err, overlay.ErrNotLoaded)
}

func TestPipeline_RefreshClearsStale(t *testing.T) {
	store := overlay.NewStore()
	snaps := newMockSnapshots(overlay.Layer{Name: overlay.Tectonics, GeoJSON: []byte(`{}`), Count: 1, UpdatedAt: fixedNow.Add(-time.Hour)})

	p := newPipeline(&mockQuakes{}, &mockPlates{plates: samplePlates()}, store, pipeline.Options{Snapshots: snaps}, newTestMetrics())
	p.Restore()
	require.NoError(t, p.RefreshPlates(context.Background()))

	layer, err := store.Get(overlay.Tectonics)
	require.NoError(t, err)
	assert.False(t, layer.Stale)
	assert.True(t, p.Refreshed())
}
