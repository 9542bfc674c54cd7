// Package vars substitutes {name} placeholders in equations before they are
// parsed.
package vars

import (
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/dmassist/internal/platform/errors"
)

// ErrUnknownVariable matches a placeholder without a value.
var ErrUnknownVariable = apperrors.New(apperrors.CodeVariableUnknown, "unknown variable")

// Substitute replaces every {name} in text with values[name]. "{{" and "}}"
// produce literal braces. Names are trimmed of surrounding spaces.
func Substitute(text string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '{' && i+1 < len(text) && text[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(text) && text[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return "", badPlaceholder(text, i)
			}
			name := strings.TrimSpace(text[i+1 : i+1+end])
			value, ok := values[name]
			if !ok {
				return "", apperrors.WithMetadata(apperrors.CodeVariableUnknown,
					"unknown variable "+strconv.Quote(name),
					map[string]string{"name": name},
				)
			}
			b.WriteString(value)
			i += end + 1
		case c == '}':
			return "", badPlaceholder(text, i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func badPlaceholder(text string, pos int) error {
	return apperrors.WithMetadata(apperrors.CodeEquationBad,
		"unterminated placeholder at position "+strconv.Itoa(pos),
		map[string]string{
			"fragment": text[pos:],
			"position": strconv.Itoa(pos),
		},
	)
}
