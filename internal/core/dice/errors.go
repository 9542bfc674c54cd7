package dice

import (
	"strconv"

	apperrors "github.com/louisbranch/dmassist/internal/platform/errors"
)

// ErrInvalidDie indicates a die with fewer than one side or more than
// MaxSides.
var ErrInvalidDie = apperrors.New(apperrors.CodeDiceInvalidDie, "die sides out of range")

// ErrInvalidParameters indicates a dice count, keep count or size out of range.
var ErrInvalidParameters = apperrors.New(apperrors.CodeDiceInvalidParameters, "dice parameters out of range")

func invalidDie(sides int) error {
	return apperrors.WithMetadata(apperrors.CodeDiceInvalidDie,
		"die sides out of range, got "+strconv.Itoa(sides),
		map[string]string{"sides": strconv.Itoa(sides)},
	)
}

func invalidParameters(sides, keep, times int) error {
	return apperrors.WithMetadata(apperrors.CodeDiceInvalidParameters,
		"invalid dice parameters: sides="+strconv.Itoa(sides)+" keep="+strconv.Itoa(keep)+" times="+strconv.Itoa(times),
		map[string]string{
			"sides": strconv.Itoa(sides),
			"keep":  strconv.Itoa(keep),
			"times": strconv.Itoa(times),
		},
	)
}
