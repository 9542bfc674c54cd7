// Package dice rolls dice against a randomness source and records every die
// rolled during an operation.
package dice

import "sort"

const (
	// MaxDice bounds the number of dice a single roll may throw.
	MaxDice = 1000
	// MaxSides bounds the faces of one die. MaxDice*MaxSides fits in an
	// int32, so no total can overflow.
	MaxSides = 1_000_000
)

// Source yields uniformly distributed integers in [min, max].
type Source interface {
	Intn(min, max int) int
}

// SumResult captures the total of a batch of dice and how many of them
// landed on their highest (crit) or lowest (fail) face.
type SumResult struct {
	Total int
	Crits int
	Fails int
}

// Roller draws dice from a Source.
type Roller struct {
	source   Source
	recorder *Recorder
}

// NewRoller creates a roller that draws from source.
func NewRoller(source Source) *Roller {
	return &Roller{source: source}
}

// Recording returns a roller sharing r's source that appends every die to
// rec while rec is enabled.
func (r *Roller) Recording(rec *Recorder) *Roller {
	return &Roller{source: r.source, recorder: rec}
}

// Recorder returns the recorder bound by Recording, or nil.
func (r *Roller) Recorder() *Recorder {
	return r.recorder
}

// Roll rolls one die with the given number of sides.
//
// It returns ErrInvalidDie when sides < 1 or sides > MaxSides.
func (r *Roller) Roll(sides int) (int, error) {
	if sides < 1 || sides > MaxSides {
		return 0, invalidDie(sides)
	}
	return r.rollDie(sides), nil
}

// RollSum rolls times dice of sides faces and sums them.
//
// # Counting
//
// A die equal to sides counts as a crit, otherwise a die equal to 1 counts
// as a fail, so Crits+Fails never exceeds times. Every die is recorded in
// roll order.
//
// # Errors
//
// ErrInvalidParameters is returned when sides is outside [1, MaxSides],
// times < 1 or times exceeds MaxDice.
func (r *Roller) RollSum(sides, times int) (SumResult, error) {
	if !validSides(sides) || times < 1 || times > MaxDice {
		return SumResult{}, invalidParameters(sides, times, times)
	}

	var result SumResult
	for i := 0; i < times; i++ {
		value := r.rollDie(sides)
		result.Total += value
		switch value {
		case sides:
			result.Crits++
		case 1:
			result.Fails++
		}
	}
	return result, nil
}

// RollTop rolls times dice and sums the keep highest (or, when highest is
// false, the keep lowest).
//
// # Ordering
//
// Dice are sorted with a stable sort, so equal values keep their roll
// order and a fixed input sequence always selects the same dice. All dice,
// kept or discarded, are recorded in roll order.
//
// # Errors
//
// ErrInvalidParameters is returned when sides is outside [1, MaxSides],
// times < 1, keep < 1, keep > times or times exceeds MaxDice.
func (r *Roller) RollTop(sides, keep, times int, highest bool) (int, error) {
	if !validSides(sides) || times < 1 || keep < 1 || keep > times || times > MaxDice {
		return 0, invalidParameters(sides, keep, times)
	}

	results := make([]int, times)
	for i := range results {
		results[i] = r.rollDie(sides)
	}
	return sumKept(results, keep, highest), nil
}

// Advantage rolls two dice and keeps the higher.
func (r *Roller) Advantage(sides int) (int, error) {
	return r.RollTop(sides, 1, 2, true)
}

// Disadvantage rolls two dice and keeps the lower.
func (r *Roller) Disadvantage(sides int) (int, error) {
	return r.RollTop(sides, 1, 2, false)
}

// Pick returns an unrecorded index in [0, n). n must be positive.
func (r *Roller) Pick(n int) int {
	return r.source.Intn(0, n-1)
}

func validSides(sides int) bool {
	return sides >= 1 && sides <= MaxSides
}

func sumKept(results []int, keep int, highest bool) int {
	sorted := make([]int, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if highest {
			return sorted[i] > sorted[j]
		}
		return sorted[i] < sorted[j]
	})

	total := 0
	for _, value := range sorted[:keep] {
		total += value
	}
	return total
}

// rollDie rolls a die with the provided number of sides.
func (r *Roller) rollDie(sides int) int {
	value := r.source.Intn(1, sides)
	if r.recorder != nil {
		r.recorder.record(Die{Value: value, Sides: sides})
	}
	return value
}
