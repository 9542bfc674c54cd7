package flavor

import "github.com/louisbranch/dmassist/internal/core/dice"

// Picker returns a uniformly random index in [0, n).
type Picker interface {
	Pick(n int) int
}

// Select picks one line for the recorded entries, prefixed with the entry it
// comments on, e.g. "[1/20]: Oof.".
//
// Candidates are entries that rolled a 1, rolled their highest face, have at
// most one face, or have a die size with commentary. One candidate is
// chosen at random and its category decided in order: dumb (at most one
// face), crit fail (a 1), crit (highest face), then the size's commentary.
// It returns false when there is no candidate or the category has no lines.
func (l Lines) Select(entries []dice.Entry, picker Picker) (string, bool) {
	var candidates []dice.Entry
	for _, entry := range entries {
		if l.notable(entry) {
			candidates = append(candidates, entry)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	chosen := candidates[picker.Pick(len(candidates))]
	set := l.category(chosen)
	if len(set) == 0 {
		return "", false
	}
	return chosen.String() + ": " + set[picker.Pick(len(set))], true
}

func (l Lines) notable(entry dice.Entry) bool {
	value := entry.Result()
	if value == 1 {
		return true
	}
	faces, ok := entry.Faces()
	if !ok {
		return false
	}
	_, commentary := l.OnRoll[faces]
	return value == faces || faces <= 1 || commentary
}

func (l Lines) category(entry dice.Entry) []string {
	value := entry.Result()
	faces, ok := entry.Faces()
	switch {
	case ok && faces <= 1:
		return l.Dumb
	case value == 1:
		return l.CritFails
	case ok && value == faces:
		return l.Crits
	case ok:
		return l.OnRoll[faces]
	default:
		return nil
	}
}
