package dice

import "strconv"

// Entry is one recorded outcome. It is either a Die that was actually
// rolled or a Synthetic value injected by a caller for flavor matching.
type Entry interface {
	// Result is the rolled or computed value.
	Result() int
	// Faces reports the face count to compare the result against, if any.
	Faces() (int, bool)
	// String renders the entry as "[value/sides]".
	String() string

	entry()
}

// Die is a single rolled die.
type Die struct {
	Value int
	Sides int
}

func (d Die) Result() int { return d.Value }

func (d Die) Faces() (int, bool) { return d.Sides, true }

func (d Die) String() string {
	return "[" + strconv.Itoa(d.Value) + "/" + strconv.Itoa(d.Sides) + "]"
}

func (Die) entry() {}

// Synthetic is a pseudo-die such as the total of a roll. Max is the highest
// value the total could have reached, or zero when there is no meaningful
// maximum; Label names the entry in that case.
type Synthetic struct {
	Value int
	Max   int
	Label string
}

// Sum returns a labelled synthetic entry for an equation result.
func Sum(value int) Synthetic {
	return Synthetic{Value: value, Label: "sum"}
}

// Total returns a synthetic entry for a total whose maximum is known.
func Total(value, max int) Synthetic {
	return Synthetic{Value: value, Max: max}
}

func (s Synthetic) Result() int { return s.Value }

func (s Synthetic) Faces() (int, bool) { return s.Max, s.Max > 0 }

func (s Synthetic) String() string {
	side := s.Label
	if s.Max > 0 {
		side = strconv.Itoa(s.Max)
	}
	return "[" + strconv.Itoa(s.Value) + "/" + side + "]"
}

func (Synthetic) entry() {}
