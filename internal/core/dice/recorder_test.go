package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderOnlyRecordsWhileEnabled(t *testing.T) {
	rec := NewRecorder()
	roller := NewRoller(&scripted{values: []int{2, 3, 4}}).Recording(rec)

	_, err := roller.Roll(6)
	require.NoError(t, err)
	assert.Zero(t, rec.Len())

	rec.Enable()
	_, err = roller.Roll(6)
	require.NoError(t, err)
	rec.Disable()

	_, err = roller.Roll(6)
	require.NoError(t, err)

	assert.Equal(t, []Entry{Die{Value: 3, Sides: 6}}, rec.Entries())
	assert.False(t, rec.Enabled())
}

func TestRecorderNestingSharesOneSession(t *testing.T) {
	rec := NewRecorder()
	roller := NewRoller(&scripted{values: []int{1, 2, 3}}).Recording(rec)

	rec.Enable()
	_, _ = roller.Roll(4)
	rec.Enable()
	_, _ = roller.Roll(4)
	rec.Disable()
	require.True(t, rec.Enabled())
	_, _ = roller.Roll(4)
	rec.Disable()

	assert.Equal(t, 3, rec.Len())
	assert.False(t, rec.Enabled())
}

func TestRecorderEnableClearsPreviousSession(t *testing.T) {
	rec := NewRecorder()
	roller := NewRoller(&scripted{values: []int{5, 6}}).Recording(rec)

	rec.Enable()
	_, _ = roller.Roll(6)
	rec.Disable()
	first := rec.Entries()
	require.Len(t, first, 1)

	rec.Enable()
	_, _ = roller.Roll(6)
	rec.Disable()

	assert.Equal(t, []Entry{Die{Value: 6, Sides: 6}}, rec.Entries())
	assert.Equal(t, []Entry{Die{Value: 5, Sides: 6}}, first, "earlier copies are unaffected")
}

func TestRecorderAppendIsUnconditional(t *testing.T) {
	rec := NewRecorder()
	rec.Append(Sum(12))
	rec.Append(Total(7, 12))

	assert.Equal(t, []Entry{Sum(12), Total(7, 12)}, rec.Entries())
}

func TestRecorderDisableWithoutEnable(t *testing.T) {
	rec := NewRecorder()
	rec.Disable()
	assert.False(t, rec.Enabled())
	rec.Enable()
	assert.True(t, rec.Enabled())
}

func TestRecorderIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, NewRecorder().ID(), NewRecorder().ID())
	assert.NotEmpty(t, NewRecorder().ID())
}

func TestEntryRendering(t *testing.T) {
	tests := []struct {
		entry     Entry
		want      string
		faces     int
		haveFaces bool
	}{
		{entry: Die{Value: 3, Sides: 20}, want: "[3/20]", faces: 20, haveFaces: true},
		{entry: Sum(17), want: "[17/sum]", faces: 0, haveFaces: false},
		{entry: Total(9, 12), want: "[9/12]", faces: 12, haveFaces: true},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.String())
			faces, ok := tt.entry.Faces()
			assert.Equal(t, tt.faces, faces)
			assert.Equal(t, tt.haveFaces, ok)
		})
	}
}
