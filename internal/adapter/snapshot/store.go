// Package snapshot persists the last good rendering of each overlay in a
// bbolt file so a restarted service can serve maps before upstream responds.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/quake-overlay-service/internal/overlay"
	bolt "go.etcd.io/bbolt"
)

var bucketOverlays = []byte("overlays")

// Store is a bbolt-backed overlay snapshot store.
type Store struct {
	db *bolt.DB
}

type record struct {
	UpdatedAt time.Time       `json:"updated_at"`
	Count     int             `json:"count"`
	GeoJSON   json.RawMessage `json:"geojson"`
}

// Open opens or creates the snapshot file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketOverlays)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshot bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Save writes the layer, replacing any previous snapshot with the same name.
func (s *Store) Save(layer overlay.Layer) error {
	data, err := json.Marshal(record{
		UpdatedAt: layer.UpdatedAt.UTC(),
		Count:     layer.Count,
		GeoJSON:   layer.GeoJSON,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", layer.Name, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketOverlays).Put([]byte(layer.Name), data)
	})
}

// Load reads the named snapshot. The boolean is false when none was saved.
// Restored layers are marked Stale.
func (s *Store) Load(name string) (overlay.Layer, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketOverlays).Get([]byte(name)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return overlay.Layer{}, false, fmt.Errorf("read snapshot %s: %w", name, err)
	}
	if data == nil {
		return overlay.Layer{}, false, nil
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return overlay.Layer{}, false, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return overlay.Layer{
		Name:      name,
		GeoJSON:   rec.GeoJSON,
		Count:     rec.Count,
		UpdatedAt: rec.UpdatedAt,
		Stale:     true,
	}, true, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}
