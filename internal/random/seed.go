// Package random provides the randomness sources behind every die draw.
//
// Pool is the production source: a block of pre-fetched crypto/rand words
// that is refilled in the background. Seeded is a deterministic source for
// tests and reproducible sessions. NewSeed produces high-entropy seeds.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
