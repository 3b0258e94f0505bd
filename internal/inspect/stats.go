package inspect

import (
	"fmt"

	"github.com/aretw0/portscope/pkg/domain"
)

func zeroValue() domain.Value {
	return domain.Scalar(int64(0))
}

// summarize returns the minimum and maximum of a column.
//
// Tuples are reduced per position: for component k the row with the smallest
// (largest) k-th component is picked and its k-th component kept. Ties keep the
// earliest row, and a NaN only wins when it comes first. An empty column yields
// 0 for both.
func summarize(column []domain.Value) (domain.Value, domain.Value, error) {
	if len(column) == 0 {
		return zeroValue(), zeroValue(), nil
	}

	first := column[0]
	for row, v := range column {
		if v.IsTuple() != first.IsTuple() || v.Len() != first.Len() {
			return domain.Value{}, domain.Value{}, fmt.Errorf("%w: row %d is %s, row 0 is %s",
				domain.ErrInconsistentShape, row, v, first)
		}
	}

	if !first.IsTuple() {
		lo, hi := first, first
		for _, v := range column[1:] {
			if domain.Less(v.Interface(), lo.Interface()) {
				lo = v
			}
			if domain.Less(hi.Interface(), v.Interface()) {
				hi = v
			}
		}
		return lo, hi, nil
	}

	arity := first.Len()
	mins := make([]any, arity)
	maxs := make([]any, arity)
	for k := 0; k < arity; k++ {
		minRow, maxRow := 0, 0
		for row := 1; row < len(column); row++ {
			c := column[row].At(k)
			if domain.Less(c, column[minRow].At(k)) {
				minRow = row
			}
			if domain.Less(column[maxRow].At(k), c) {
				maxRow = row
			}
		}
		mins[k] = column[minRow].At(k)
		maxs[k] = column[maxRow].At(k)
	}
	return domain.Tuple(mins...), domain.Tuple(maxs...), nil
}
