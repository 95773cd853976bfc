// Package persist mirrors the entity store's collections to a durable
// per-device slot, one JSON-serialized sequence per collection key.
package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Fixed slot keys, one per collection.
const (
	SlotBuses     = "buses"
	SlotTerminals = "terminals"
	SlotRoutes    = "routes"
)

// SlotStore is a string-keyed durable slot. Write overwrites the whole
// value; there is no partial or incremental persistence.
type SlotStore interface {
	// Read returns the stored value and whether the slot exists.
	Read(key string) ([]byte, bool, error)
	// Write overwrites the slot with value.
	Write(key string, value []byte) error
}

// FileSlotStore keeps one JSON file per slot key under a data directory.
type FileSlotStore struct {
	dir string
}

// NewFileSlotStore creates the data directory if needed.
func NewFileSlotStore(dir string) (*FileSlotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileSlotStore{dir: dir}, nil
}

func (s *FileSlotStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileSlotStore) Read(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *FileSlotStore) Write(key string, value []byte) error {
	return os.WriteFile(s.path(key), value, 0o644)
}

// Load reads a slot and unmarshals it into dest. An absent or malformed
// slot leaves dest empty rather than failing: stale on-disk garbage must
// never prevent startup. Decoding goes through a scratch slice so a
// malformed element cannot leave dest partially populated.
func Load[E any](store SlotStore, key string, dest *[]E) {
	data, ok, err := store.Read(key)
	if err != nil {
		logrus.WithError(err).WithField("slot", key).Warn("slot read failed, starting empty")
		return
	}
	if !ok {
		return
	}
	var decoded []E
	if err := json.Unmarshal(data, &decoded); err != nil {
		logrus.WithError(err).WithField("slot", key).Warn("slot holds malformed JSON, starting empty")
		return
	}
	*dest = decoded
}

// Save serializes v and overwrites the slot. Serialization of the entity
// types cannot fail; a write error is logged and the in-memory state
// stays authoritative until the next mutation retries the mirror.
func Save(store SlotStore, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).WithField("slot", key).Error("slot marshal failed")
		return
	}
	if err := store.Write(key, data); err != nil {
		logrus.WithError(err).WithField("slot", key).Error("slot write failed")
	}
}
