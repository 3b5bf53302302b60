package store

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// NewID returns a unique opaque identifier. The format is UUID-shaped but
// callers must not depend on it. When the crypto-backed source fails, a
// weaker math/rand construction with the v4 version and variant bits is
// used instead; this path never fails.
func NewID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}

	var b [16]byte
	for i := range b {
		b[i] = byte(rand.Intn(256))
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
