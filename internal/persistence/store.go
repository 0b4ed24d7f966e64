package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"IdleTycoon/internal/catalog"
	"IdleTycoon/internal/economy"
	"IdleTycoon/internal/model"
)

// DefaultSaveKey names the single save slot. The suffix versions the layout.
const DefaultSaveKey = "startupTycoonSave_v2"

// ErrNoSnapshot reports an empty save slot.
var ErrNoSnapshot = errors.New("no snapshot")

// Store reads and writes the single save slot.
type Store interface {
	Load() (*model.SaveSnapshot, error)
	Save(snap model.SaveSnapshot) error
	Close() error
}

// FileStore keeps the save slot as a key in a JSON document on disk.
type FileStore struct {
	path string
	key  string
}

func NewFileStore(path, key string) *FileStore {
	if key == "" {
		key = DefaultSaveKey
	}
	return &FileStore{path: path, key: key}
}

// Load returns ErrNoSnapshot when the file or the key is missing.
func (f *FileStore) Load() (*model.SaveSnapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read save file: %w", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse save file: %w", err)
	}
	raw, ok := doc[f.key]
	if !ok || string(raw) == "null" {
		return nil, ErrNoSnapshot
	}
	return Decode(raw)
}

// Save replaces the slot atomically via a temporary file and rename.
func (f *FileStore) Save(snap model.SaveSnapshot) error {
	payload, err := Encode(snap)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(map[string]json.RawMessage{f.key: payload}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal save file: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create save dir: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write save file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace save file: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

// Restore loads the slot and reconciles it against cat. Any load failure
// falls back to catalog defaults.
func Restore(store Store, cat *catalog.Catalog, opts ReconcileOptions) *economy.State {
	snap, err := store.Load()
	switch {
	case errors.Is(err, ErrNoSnapshot):
		log.Println("[INFO] no saved game found, starting fresh")
		snap = nil
	case err != nil:
		log.Printf("[WARN] discarding unreadable save: %v", err)
		snap = nil
	}

	st, rep := Reconcile(snap, cat, opts)
	if len(rep.Dropped) > 0 {
		log.Printf("[INFO] dropped saved assets no longer in catalog: %v", rep.Dropped)
	}
	if snap != nil && len(rep.Defaulted) > 0 {
		log.Printf("[INFO] new catalog assets at defaults: %v", rep.Defaulted)
	}
	return st
}
