package store

import (
	"log"

	"github.com/goccy/go-json"
)

// MemorySubstrate holds the serialized snapshot in memory. It exists for
// tests and for running without any persistence at all; flipping
// Unavailable simulates a sink that cannot be reached.
type MemorySubstrate struct {
	Unavailable bool
	data        []byte
}

func NewMemorySubstrate() *MemorySubstrate {
	return &MemorySubstrate{}
}

func (m *MemorySubstrate) Load() *Snapshot {
	if m.Unavailable || m.data == nil {
		return NewSnapshot()
	}
	return decodeSnapshot(m.data)
}

func (m *MemorySubstrate) Save(snap *Snapshot) {
	if m.Unavailable {
		log.Print("snapshot sink unavailable, write dropped")
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("failed to serialize snapshot, write dropped: %v", err)
		return
	}
	m.data = data
}

// Corrupt overwrites the stored blob with garbage. Test helper.
func (m *MemorySubstrate) Corrupt() {
	m.data = []byte("{not json")
}
