// Package overlay holds the latest rendered map overlays shared between the
// refresh pipeline (writer) and the HTTP API (readers).
package overlay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Overlay names used as store keys, metric labels, and snapshot keys.
const (
	Earthquakes = "earthquakes"
	Tectonics   = "tectonics"
)

// ErrNotLoaded is returned when an overlay has never been populated.
var ErrNotLoaded = errors.New("overlay not loaded")

// Layer is one rendered overlay.
type Layer struct {
	Name      string
	GeoJSON   []byte
	Count     int
	UpdatedAt time.Time
	// Stale marks a layer restored from a snapshot that has not been refreshed
	// from upstream since startup.
	Stale bool
}

// Store is a concurrency-safe map of overlay name to latest Layer.
type Store struct {
	mu     sync.RWMutex
	layers map[string]Layer
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{layers: make(map[string]Layer)}
}

// Put replaces the named layer.
func (s *Store) Put(layer Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers[layer.Name] = layer
}

// Get returns the named layer or ErrNotLoaded.
func (s *Store) Get(name string) (Layer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layers[name]
	if !ok {
		return Layer{}, fmt.Errorf("%s: %w", name, ErrNotLoaded)
	}
	return l, nil
}

// Names returns the names of loaded layers.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.layers))
	for name := range s.layers {
		out = append(out, name)
	}
	return out
}

// CheckReadiness returns nil once any overlay holds data.
func (s *Store) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.layers) == 0 {
		return errors.New("no overlay has been loaded yet")
	}
	return nil
}
