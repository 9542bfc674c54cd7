package random

import (
	"math/rand"
	"sync"
)

// Seeded is a deterministic source. Given the same seed and the same
// sequence of calls it always produces the same values.
type Seeded struct {
	mu   sync.Mutex
	seed int64
	rng  *rand.Rand
}

// NewSeeded creates a deterministic source. A zero seed is replaced by a
// crypto seed, readable afterwards through Seed.
func NewSeeded(seed int64) (*Seeded, error) {
	if seed == 0 {
		fresh, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = fresh
	}
	return &Seeded{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

// Seed returns the seed the source was created with.
func (s *Seeded) Seed() int64 {
	return s.seed
}

// Intn returns a value in [min, max]. Bounds are swapped when reversed.
func (s *Seeded) Intn(min, max int) int {
	if min > max {
		min, max = max, min
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	span := max - min + 1
	if span <= 0 {
		return min + int(s.rng.Uint64()&^(1<<63))
	}
	return min + s.rng.Intn(span)
}
