// Package transcript renders recorded dice for display.
package transcript

import (
	"strings"

	"github.com/louisbranch/dmassist/internal/core/dice"
)

const (
	// GroupSize is the number of entries per line.
	GroupSize = 10
	// MaxGroups is the number of lines rendered before truncating.
	MaxGroups = 4
	// EllipsisAfter is the entry count above which output is marked truncated.
	EllipsisAfter = 30
	// Ellipsis marks a truncated transcript.
	Ellipsis = "..."
)

// Format renders up to MaxGroups lines of GroupSize bracketed entries.
// Entries are joined by ", " within a line and lines by ",\n". Ellipsis is
// appended when there are more than EllipsisAfter entries.
func Format(entries []dice.Entry) string {
	var b strings.Builder
	for group := 0; group < MaxGroups && group*GroupSize < len(entries); group++ {
		if group > 0 {
			b.WriteString(",\n")
		}
		end := min((group+1)*GroupSize, len(entries))
		for i, entry := range entries[group*GroupSize : end] {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(entry.String())
		}
	}
	if len(entries) > EllipsisAfter {
		b.WriteString(Ellipsis)
	}
	return b.String()
}

// Block wraps Format in a "Rolled:" code block. It returns "" when there is
// nothing to show.
func Block(entries []dice.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	return "Rolled:\n```\n" + Format(entries) + "\n```"
}
