package expr

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/dmassist/internal/core/dice"
	apperrors "github.com/louisbranch/dmassist/internal/platform/errors"
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

func recording(values ...int) (*dice.Roller, *dice.Recorder) {
	rec := dice.NewRecorder()
	rec.Enable()
	return dice.NewRoller(&scripted{values: values}).Recording(rec), rec
}

func TestParseEquationArithmetic(t *testing.T) {
	tests := []struct {
		equation string
		want     float64
	}{
		{equation: "2+2", want: 4},
		{equation: "2^3", want: 8},
		{equation: "10/4", want: 2.5},
		{equation: "round(10/4)", want: 2},
		{equation: "round(2.5)", want: 2},
		{equation: "round(3.5)", want: 4},
		{equation: "round(-2.5)", want: -2},
		{equation: "2+3*4", want: 14},
		{equation: "(2+3)*4", want: 20},
		{equation: "10-4-3", want: 3},
		{equation: "100/10/5", want: 2},
		{equation: "2^3^2", want: 512},
		{equation: "-2^2", want: -4},
		{equation: "2^-1", want: 0.5},
		{equation: "7%3", want: 1},
		{equation: "-7%3", want: 2},
		{equation: "7%-3", want: -2},
		{equation: "2*3%4", want: 2},
		{equation: "--3", want: 3},
		{equation: "+3", want: 3},
		{equation: " 1 +  1 ", want: 2},
		{equation: "1.5*2", want: 3},
		{equation: "ROUND(7/2)", want: 4},
		{equation: "((((1))))", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.equation, func(t *testing.T) {
			roller, rec := recording(1)
			got, err := ParseEquation(context.Background(), roller, tt.equation)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, rec.Len(), "plain arithmetic rolls nothing")
		})
	}
}

func TestParseEquationSingleDie(t *testing.T) {
	roller, rec := recording(17)

	got, err := ParseEquation(context.Background(), roller, "1d20")
	require.NoError(t, err)
	assert.Equal(t, 17.0, got)
	assert.Equal(t, []dice.Entry{dice.Die{Value: 17, Sides: 20}}, rec.Entries())
}

func TestParseEquationDiceTerms(t *testing.T) {
	tests := []struct {
		name     string
		equation string
		values   []int
		want     float64
		rolled   int
	}{
		{name: "dice plus modifier", equation: "2d6+3", values: []int{2, 5}, want: 10, rolled: 2},
		{name: "implicit count", equation: "d8*2", values: []int{3}, want: 6, rolled: 1},
		{name: "upper case", equation: "3D4", values: []int{1, 2, 3}, want: 6, rolled: 3},
		{name: "advantage", equation: "adv(20)", values: []int{4, 17}, want: 17, rolled: 2},
		{name: "disadvantage", equation: "dis(20)+1", values: []int{4, 17}, want: 5, rolled: 2},
		{name: "top", equation: "top(4, 6, 3)", values: []int{3, 5, 1, 5}, want: 13, rolled: 4},
		{name: "bot", equation: "bot(4,6,2)", values: []int{3, 5, 1, 5}, want: 4, rolled: 4},
		{name: "computed arguments", equation: "top(2+2, 3*2, 1d3)", values: []int{2, 6, 1, 4, 3}, want: 10, rolled: 5},
		{name: "rounded division", equation: "round(1d6/4)", values: []int{5}, want: 1, rolled: 1},
		{name: "several terms", equation: "1d20 + 1d4 - 1d6", values: []int{10, 2, 3}, want: 9, rolled: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller, rec := recording(tt.values...)
			got, err := ParseEquation(context.Background(), roller, tt.equation)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rolled, rec.Len())
		})
	}
}

func TestParseEquationBadEquation(t *testing.T) {
	tests := []struct {
		equation string
		fragment string
	}{
		{equation: "(2+3", fragment: "(2+3"},
		{equation: "2+3)", fragment: ")"},
		{equation: "2 $ 3", fragment: "$"},
		{equation: "foo(1)", fragment: "foo"},
		{equation: "top(1,2)", fragment: "top(1,2)"},
		{equation: "round()", fragment: "round()"},
		{equation: "adv(20", fragment: "adv(20"},
		{equation: "adv 20", fragment: "adv 20"},
		{equation: "1/0", fragment: "1/0"},
		{equation: "5%(2-2)", fragment: "5%(2-2"},
		{equation: "0d6", fragment: "0d6"},
		{equation: "1d0", fragment: "1d0"},
		{equation: "2d", fragment: "2d"},
		{equation: "2dx", fragment: "2d"},
		{equation: "adv(2.5)", fragment: "2.5"},
		{equation: "", fragment: ""},
		{equation: "2+", fragment: ""},
		{equation: "2 3", fragment: "3"},
		{equation: "10^400", fragment: "10^400"},
		{equation: "1001d6", fragment: "1001d6"},
		{equation: "top(2,6,3)", fragment: "top(2,6,3)"},
		{equation: "2d9223372036854775807", fragment: "2d9223372036854775807"},
		{equation: "1d1000001", fragment: "1d1000001"},
		{equation: "2d99999999999999999999", fragment: "2d99999999999999999999"},
		{equation: "adv(1000001)", fragment: "adv(1000001)"},
	}
	for _, tt := range tests {
		t.Run(tt.equation, func(t *testing.T) {
			roller, _ := recording(1)
			_, err := ParseEquation(context.Background(), roller, tt.equation)
			require.ErrorIs(t, err, ErrBadEquation)

			domainErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.fragment, domainErr.Meta("fragment"))
		})
	}
}

func TestBadEquationKeepsRollerCause(t *testing.T) {
	roller, _ := recording(1)

	_, err := ParseEquation(context.Background(), roller, "top(3,6,4)")
	require.ErrorIs(t, err, ErrBadEquation)
	require.ErrorIs(t, err, dice.ErrInvalidParameters)
}

func TestBadEquationIsNotUnknownVariable(t *testing.T) {
	_, err := Parse("(1")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEquationBad, apperrors.GetCode(err))
}

func TestProgramReevaluatesDeterministically(t *testing.T) {
	program, err := Parse("top(4,6,3) + 1d20")
	require.NoError(t, err)
	assert.Equal(t, "top(4,6,3) + 1d20", program.String())

	values := []int{6, 2, 6, 3, 11}
	first, err := program.Eval(context.Background(), dice.NewRoller(&scripted{values: values}))
	require.NoError(t, err)
	second, err := program.Eval(context.Background(), dice.NewRoller(&scripted{values: values}))
	require.NoError(t, err)

	assert.Equal(t, 26.0, first)
	assert.Equal(t, first, second)
}

func TestEvalWithoutRoller(t *testing.T) {
	got, err := ParseEquation(context.Background(), nil, "2*(3+4)")
	require.NoError(t, err)
	assert.Equal(t, 14.0, got)

	_, err = ParseEquation(context.Background(), nil, "1d6")
	require.ErrorIs(t, err, ErrBadEquation)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{value: 4, want: "4"},
		{value: 2.5, want: "2.5"},
		{value: -3, want: "-3"},
		{value: 0, want: "0"},
		{value: 1e22, want: "1e+22"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.value))
		})
	}
}

func TestParseNestingLimit(t *testing.T) {
	nested := func(n int) string {
		return strings.Repeat("(", n) + "1" + strings.Repeat(")", n)
	}

	got, err := ParseEquation(context.Background(), nil, nested(maxDepth-1))
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	for _, equation := range []string{nested(100_000), strings.Repeat("-", 100_000) + "1"} {
		_, err := Parse(equation)
		require.ErrorIs(t, err, ErrBadEquation)

		domainErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, "equation nests too deeply", domainErr.Meta("reason"))
	}
}
