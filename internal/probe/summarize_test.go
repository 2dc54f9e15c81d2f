package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "metaprobe/internal/errors"
	"metaprobe/pkg/records"
)

func strs(ss ...string) []records.Value {
	out := make([]records.Value, len(ss))
	for i, s := range ss {
		out[i] = records.String(s)
	}
	return out
}

func TestSummarize_Numeric(t *testing.T) {
	t.Parallel()

	s, err := Summarize(FieldValueSet{Name: "n", Values: strs("1", "2", "3")}, FieldNumeric)
	require.NoError(t, err)
	assert.Equal(t, "n", s.Name)
	assert.Equal(t, FieldNumeric, s.Type)
	assert.Equal(t, 1.0, *s.Min)
	assert.Equal(t, 3.0, *s.Max)
	assert.Equal(t, 2.0, *s.Mean)
	assert.Nil(t, s.UniqueCount)
}

func TestSummarize_ComparesNumerically(t *testing.T) {
	t.Parallel()

	// As strings "10" < "9"; as numbers it is the max.
	s, err := Summarize(FieldValueSet{Name: "n", Values: strs("9", "10", "-2.5e1")}, FieldNumeric)
	require.NoError(t, err)
	assert.Equal(t, -25.0, *s.Min)
	assert.Equal(t, 10.0, *s.Max)
	assert.InDelta(t, -2.0, *s.Mean, 1e-12)
}

func TestSummarize_String(t *testing.T) {
	t.Parallel()

	s, err := Summarize(FieldValueSet{Name: "s", Values: strs("1", "2", "x")}, FieldString)
	require.NoError(t, err)
	require.NotNil(t, s.UniqueCount)
	assert.Equal(t, 3, *s.UniqueCount)
	assert.Nil(t, s.Min)
	assert.Nil(t, s.Max)
	assert.Nil(t, s.Mean)
}

func TestSummarize_Overflow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vals []records.Value
	}{
		{"value overflows", strs("1", "1e400")},
		{"sum overflows", strs("1e308", "1.5e308")},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Summarize(FieldValueSet{Name: "big", Values: tt.vals}, FieldNumeric)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeComputation, apperrors.GetCode(err))
		})
	}
}
