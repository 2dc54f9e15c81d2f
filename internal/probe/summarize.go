package probe

import (
	"fmt"
	"math"
	"strconv"

	"github.com/montanaflynn/stats"

	apperrors "metaprobe/internal/errors"
)

// Summarize computes the summary of one classified field.
//
// Numeric fields get min, max and mean over the distinct values, each
// counted once and converted to float64. String fields get the number of
// distinct values.
func Summarize(set FieldValueSet, typ FieldType) (FieldSummary, error) {
	sum := FieldSummary{Name: set.Name, Type: typ}

	if typ != FieldNumeric {
		n := len(set.Values)
		sum.UniqueCount = &n
		return sum, nil
	}

	data := make(stats.Float64Data, 0, len(set.Values))
	for _, v := range set.Values {
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return FieldSummary{}, apperrors.ComputationError(
				fmt.Sprintf("field %q: value %q is not representable as float64", set.Name, v.String()), err)
		}
		data = append(data, f)
	}

	lo, err := stats.Min(data)
	if err != nil {
		return FieldSummary{}, apperrors.ComputationError(fmt.Sprintf("field %q: min", set.Name), err)
	}
	hi, err := stats.Max(data)
	if err != nil {
		return FieldSummary{}, apperrors.ComputationError(fmt.Sprintf("field %q: max", set.Name), err)
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return FieldSummary{}, apperrors.ComputationError(fmt.Sprintf("field %q: mean", set.Name), err)
	}
	if math.IsInf(mean, 0) || math.IsNaN(mean) {
		return FieldSummary{}, apperrors.ComputationError(
			fmt.Sprintf("field %q: mean overflows float64", set.Name), nil)
	}

	sum.Min, sum.Max, sum.Mean = &lo, &hi, &mean
	return sum, nil
}
