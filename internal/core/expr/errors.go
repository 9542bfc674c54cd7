package expr

import (
	"strconv"

	apperrors "github.com/louisbranch/dmassist/internal/platform/errors"
)

// ErrBadEquation matches any parse or evaluation failure.
var ErrBadEquation = apperrors.New(apperrors.CodeEquationBad, "bad equation")

// badEquation builds a BadEquation error pointing at source[start:end].
func badEquation(source string, start, end int, reason string, cause error) error {
	start = min(max(start, 0), len(source))
	end = min(max(end, start), len(source))
	fragment := source[start:end]
	if fragment == "" {
		fragment = source[start:]
	}
	metadata := map[string]string{
		"fragment": fragment,
		"position": strconv.Itoa(start),
		"reason":   reason,
	}
	message := reason + " at position " + strconv.Itoa(start)
	if fragment != "" {
		message += " near " + strconv.Quote(fragment)
	}
	if cause != nil {
		return apperrors.WrapWithMetadata(apperrors.CodeEquationBad, message, metadata, cause)
	}
	return apperrors.WithMetadata(apperrors.CodeEquationBad, message, metadata)
}
