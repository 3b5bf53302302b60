package store

import (
	"log"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Substrate persists the database as one serialized blob in one named slot.
//
// Load never fails from the caller's point of view: a missing slot, an
// unavailable sink, or a malformed payload all come back as an empty
// snapshot (logged). Save is best effort and swallows failures the same
// way; callers must not assume durability.
type Substrate interface {
	Load() *Snapshot
	Save(*Snapshot)
}

// FileSubstrate keeps the snapshot as a JSON blob in a single file.
// MaxBytes, when positive, caps the serialized size; an oversized save is
// dropped, mirroring a quota-limited sink.
type FileSubstrate struct {
	Path     string
	MaxBytes int
}

func NewFileSubstrate(path string) *FileSubstrate {
	return &FileSubstrate{Path: path}
}

func (f *FileSubstrate) Load() *Snapshot {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("snapshot file %s unreadable, starting empty: %v", f.Path, err)
		}
		return NewSnapshot()
	}
	return decodeSnapshot(data)
}

func (f *FileSubstrate) Save(snap *Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("failed to serialize snapshot, write dropped: %v", err)
		return
	}
	if f.MaxBytes > 0 && len(data) > f.MaxBytes {
		log.Printf("snapshot is %d bytes, over the %d byte capacity, write dropped", len(data), f.MaxBytes)
		return
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("failed to create snapshot directory %s, write dropped: %v", dir, err)
			return
		}
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		log.Printf("failed to write snapshot to %s, write dropped: %v", f.Path, err)
	}
}

// decodeSnapshot falls back to an empty snapshot on malformed input so a
// corrupt slot never takes down a caller.
func decodeSnapshot(data []byte) *Snapshot {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("failed to parse stored snapshot, starting empty: %v", err)
		return NewSnapshot()
	}
	return snap.normalize()
}
