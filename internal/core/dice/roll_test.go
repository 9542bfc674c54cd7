package dice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/dmassist/internal/random"
)

// scripted replays fixed values, ignoring the requested bounds.
type scripted struct {
	values []int
	next   int
}

func (s *scripted) Intn(min, max int) int {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func seeded(t *testing.T, seed int64) *random.Seeded {
	t.Helper()
	src, err := random.NewSeeded(seed)
	require.NoError(t, err)
	return src
}

func TestRollRange(t *testing.T) {
	roller := NewRoller(seeded(t, 42))

	for _, sides := range []int{1, 2, 4, 6, 8, 10, 12, 20, 100} {
		for i := 0; i < 200; i++ {
			value, err := roller.Roll(sides)
			require.NoError(t, err)
			require.GreaterOrEqual(t, value, 1)
			require.LessOrEqual(t, value, sides)
		}
	}
}

func TestRollInvalidDie(t *testing.T) {
	roller := NewRoller(seeded(t, 1))

	for _, sides := range []int{0, -1, -20, MaxSides + 1, math.MaxInt} {
		_, err := roller.Roll(sides)
		require.ErrorIs(t, err, ErrInvalidDie)
	}
}

func TestRollSumCounts(t *testing.T) {
	roller := NewRoller(&scripted{values: []int{1, 6, 3, 6}})

	result, err := roller.RollSum(6, 4)
	require.NoError(t, err)
	assert.Equal(t, SumResult{Total: 16, Crits: 2, Fails: 1}, result)
}

func TestRollSumOneSidedDiceAreCrits(t *testing.T) {
	roller := NewRoller(seeded(t, 3))

	result, err := roller.RollSum(1, 5)
	require.NoError(t, err)
	assert.Equal(t, SumResult{Total: 5, Crits: 5, Fails: 0}, result)
}

func TestRollSumProperties(t *testing.T) {
	rec := NewRecorder()
	roller := NewRoller(seeded(t, 99)).Recording(rec)

	for _, tc := range []struct{ sides, times int }{{20, 1}, {6, 10}, {2, 50}, {100, 7}} {
		rec.Enable()
		result, err := roller.RollSum(tc.sides, tc.times)
		rec.Disable()
		require.NoError(t, err)

		entries := rec.Entries()
		require.Len(t, entries, tc.times)

		total, crits, fails := 0, 0, 0
		for _, e := range entries {
			v := e.Result()
			require.GreaterOrEqual(t, v, 1)
			require.LessOrEqual(t, v, tc.sides)
			total += v
			switch v {
			case tc.sides:
				crits++
			case 1:
				fails++
			}
		}
		assert.Equal(t, total, result.Total)
		assert.Equal(t, crits, result.Crits)
		assert.Equal(t, fails, result.Fails)
		assert.LessOrEqual(t, result.Crits+result.Fails, tc.times)
	}
}

func TestRollSumInvalidParameters(t *testing.T) {
	roller := NewRoller(seeded(t, 1))

	tests := []struct {
		name         string
		sides, times int
	}{
		{name: "zero sides", sides: 0, times: 1},
		{name: "zero times", sides: 6, times: 0},
		{name: "negative times", sides: 6, times: -2},
		{name: "too many dice", sides: 6, times: MaxDice + 1},
		{name: "too many sides", sides: MaxSides + 1, times: 1},
		{name: "max int sides", sides: math.MaxInt, times: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := roller.RollSum(tt.sides, tt.times)
			require.ErrorIs(t, err, ErrInvalidParameters)
		})
	}
}

func TestRollTopSelectsKeptDice(t *testing.T) {
	tests := []struct {
		name    string
		values  []int
		keep    int
		highest bool
		want    int
	}{
		{name: "top two", values: []int{3, 5, 1, 5}, keep: 2, highest: true, want: 10},
		{name: "bottom two", values: []int{3, 5, 1, 5}, keep: 2, highest: false, want: 4},
		{name: "top one", values: []int{2, 6, 4, 1}, keep: 1, highest: true, want: 6},
		{name: "keep all", values: []int{2, 6, 4, 1}, keep: 4, highest: false, want: 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecorder()
			rec.Enable()
			roller := NewRoller(&scripted{values: tt.values}).Recording(rec)

			got, err := roller.RollTop(6, tt.keep, len(tt.values), tt.highest)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Discarded dice are still recorded, in roll order.
			entries := rec.Entries()
			require.Len(t, entries, len(tt.values))
			for i, v := range tt.values {
				assert.Equal(t, Die{Value: v, Sides: 6}, entries[i])
			}
		})
	}
}

func TestRollTopKeepAllEqualsSum(t *testing.T) {
	for _, highest := range []bool{true, false} {
		top, err := NewRoller(seeded(t, 2024)).RollTop(8, 5, 5, highest)
		require.NoError(t, err)
		sum, err := NewRoller(seeded(t, 2024)).RollSum(8, 5)
		require.NoError(t, err)
		assert.Equal(t, sum.Total, top)
	}
}

func TestRollTopInvalidParameters(t *testing.T) {
	roller := NewRoller(seeded(t, 1))

	tests := []struct {
		name              string
		sides, keep, time int
	}{
		{name: "keep above times", sides: 6, keep: 5, time: 4},
		{name: "keep zero", sides: 6, keep: 0, time: 4},
		{name: "times zero", sides: 6, keep: 1, time: 0},
		{name: "sides zero", sides: 0, keep: 1, time: 4},
		{name: "too many dice", sides: 6, keep: 1, time: MaxDice + 1},
		{name: "too many sides", sides: MaxSides + 1, keep: 1, time: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := roller.RollTop(tt.sides, tt.keep, tt.time, true)
			require.ErrorIs(t, err, ErrInvalidParameters)
		})
	}
}

func TestAdvantageAndDisadvantage(t *testing.T) {
	adv, err := NewRoller(&scripted{values: []int{4, 17}}).Advantage(20)
	require.NoError(t, err)
	assert.Equal(t, 17, adv)

	dis, err := NewRoller(&scripted{values: []int{4, 17}}).Disadvantage(20)
	require.NoError(t, err)
	assert.Equal(t, 4, dis)

	_, err = NewRoller(&scripted{values: []int{1}}).Advantage(0)
	require.ErrorIs(t, err, ErrInvalidParameters)
}

func TestRollWithPool(t *testing.T) {
	pool := random.NewPool(random.WithCapacity(8), random.WithLowWatermark(4))
	roller := NewRoller(pool)

	// The pool starts empty and is never refilled: every draw falls back.
	for i := 0; i < 100; i++ {
		v, err := roller.Roll(20)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 20)
	}
	assert.True(t, pool.IsLow())
}

func TestPickIsNotRecorded(t *testing.T) {
	rec := NewRecorder()
	rec.Enable()
	roller := NewRoller(seeded(t, 5)).Recording(rec)

	for i := 0; i < 50; i++ {
		n := roller.Pick(3)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 3)
	}
	assert.Zero(t, rec.Len())
}

// highest always lands on the top face.
type highest struct{}

func (highest) Intn(_, max int) int { return max }

func TestRollSumLargestRollIsExact(t *testing.T) {
	roller := NewRoller(highest{})

	result, err := roller.RollSum(MaxSides, MaxDice)
	require.NoError(t, err)
	assert.Equal(t, MaxSides*MaxDice, result.Total)
	assert.Equal(t, MaxDice, result.Crits)

	top, err := roller.RollTop(MaxSides, MaxDice, MaxDice, true)
	require.NoError(t, err)
	assert.Equal(t, MaxSides*MaxDice, top)
}
