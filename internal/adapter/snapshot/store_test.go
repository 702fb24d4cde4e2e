package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/quake-overlay-service/internal/overlay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlays.db")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestStore_SaveLoad(t *testing.T) {
	s, _ := openTestStore(t)
	t.Cleanup(func() { _ = s.Close() })

	updated := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	require.NoError(t, s.Save(overlay.Layer{
		Name:      overlay.Earthquakes,
		GeoJSON:   []byte(`{"type":"FeatureCollection","features":[]}`),
		Count:     0,
		UpdatedAt: updated,
	}))

	l, ok, err := s.Load(overlay.Earthquakes)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, overlay.Earthquakes, l.Name)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(l.GeoJSON))
	assert.True(t, updated.Equal(l.UpdatedAt))
	assert.True(t, l.Stale)
}

func TestStore_LoadMissing(t *testing.T) {
	s, _ := openTestStore(t)
	t.Cleanup(func() { _ = s.Close() })

	_, ok, err := s.Load(overlay.Tectonics)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SurvivesReopen(t *testing.T) {
	s, path := openTestStore(t)
	require.NoError(t, s.Save(overlay.Layer{Name: overlay.Tectonics, GeoJSON: []byte(`{"a":1}`), Count: 52}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	l, ok, err := reopened.Load(overlay.Tectonics)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 52, l.Count)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s, _ := openTestStore(t)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Save(overlay.Layer{Name: overlay.Earthquakes, GeoJSON: []byte(`1`), Count: 1}))
	require.NoError(t, s.Save(overlay.Layer{Name: overlay.Earthquakes, GeoJSON: []byte(`2`), Count: 2}))

	l, _, err := s.Load(overlay.Earthquakes)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Count)
	assert.Equal(t, "2", string(l.GeoJSON))
}
