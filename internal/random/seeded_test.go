package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededDeterminism(t *testing.T) {
	a, err := NewSeeded(12345)
	require.NoError(t, err)
	b, err := NewSeeded(12345)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(1, 20), b.Intn(1, 20), "draw %d diverged", i)
	}
}

func TestSeededZeroSeedIsReplaced(t *testing.T) {
	s, err := NewSeeded(0)
	require.NoError(t, err)
	assert.NotZero(t, s.Seed())
}

func TestSeededBounds(t *testing.T) {
	s, err := NewSeeded(7)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		v := s.Intn(6, 1)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 6)
	}
	assert.Equal(t, 3, s.Intn(3, 3))
}

func TestNewSeed(t *testing.T) {
	seed, err := NewSeed()
	require.NoError(t, err)
	other, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, seed, other)
}
