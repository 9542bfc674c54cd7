package dice

import (
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/dmassist/internal/platform/errors"
)

// ErrInvalidNotation indicates text that is not "<times>d<sides>".
var ErrInvalidNotation = apperrors.New(apperrors.CodeDiceInvalidNotation, "invalid dice notation")

// Spec describes a die to roll and how many times to roll it.
type Spec struct {
	Sides int
	Count int
}

// String renders the spec in NdM form.
func (s Spec) String() string {
	return strconv.Itoa(s.Count) + "d" + strconv.Itoa(s.Sides)
}

// Max is the highest total the spec can produce.
func (s Spec) Max() int {
	return s.Sides * s.Count
}

// ParseNotation parses "NdM" (case-insensitive, N defaults to 1). It only
// checks the shape; range checks happen when the spec is rolled.
func ParseNotation(text string) (Spec, error) {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	count, sides, ok := strings.Cut(trimmed, "d")
	if !ok {
		return Spec{}, invalidNotation(text)
	}

	spec := Spec{Count: 1}
	if count != "" {
		n, err := strconv.Atoi(count)
		if err != nil {
			return Spec{}, invalidNotation(text)
		}
		spec.Count = n
	}
	n, err := strconv.Atoi(sides)
	if err != nil {
		return Spec{}, invalidNotation(text)
	}
	spec.Sides = n
	return spec, nil
}

// RollSpec rolls a parsed spec.
func (r *Roller) RollSpec(spec Spec) (SumResult, error) {
	return r.RollSum(spec.Sides, spec.Count)
}

func invalidNotation(text string) error {
	return apperrors.WithMetadata(apperrors.CodeDiceInvalidNotation,
		"invalid dice notation "+strconv.Quote(text),
		map[string]string{"notation": text},
	)
}
