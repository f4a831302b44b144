package compare

import (
	"math"
	"sort"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/rewritecheck/resultset"
)

// Normalized is a canonicalized copy of a ResultSet.
type Normalized struct {
	Columns []string
	Rows    []resultset.Row
	// OrderingTrusted is false when the rows could not be sorted and are in
	// execution order instead.
	OrderingTrusted bool

	colIdx map[string]int
}

func (n Normalized) NumRows() int {
	return len(n.Rows)
}

func (n Normalized) ColumnIndex(col string) (int, bool) {
	idx, ok := n.colIdx[col]
	return idx, ok
}

// Normalize rounds every float in the result set to the given number of
// decimal places and sorts rows lexicographically over all columns in schema
// order. If the rows cannot be ordered, they are left in execution order and
// OrderingTrusted is false.
func Normalize(rs resultset.ResultSet, precision int) Normalized {
	n := Normalized{
		Columns:         rs.Columns(),
		Rows:            rs.Rows(),
		OrderingTrusted: true,
		colIdx:          make(map[string]int, rs.NumColumns()),
	}
	for i, col := range n.Columns {
		n.colIdx[col] = i
	}
	for _, row := range n.Rows {
		for i, v := range row {
			if v.Kind() == resultset.KindFloat {
				row[i] = resultset.MakeFloat(roundFloat(v.Float(), precision))
			}
		}
	}

	sorted := make([]resultset.Row, len(n.Rows))
	copy(sorted, n.Rows)
	var sortErr error
	sort.SliceStable(sorted, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		c, err := compareRows(sorted[i], sorted[j])
		if err != nil {
			sortErr = err
			return false
		}
		return c < 0
	})
	if sortErr != nil {
		n.OrderingTrusted = false
		return n
	}
	n.Rows = sorted
	return n
}

func compareRows(a, b resultset.Row) (int, error) {
	for i := range a {
		c, err := a[i].Compare(b[i])
		if err != nil || c != 0 {
			return c, err
		}
	}
	return 0, nil
}

// roundFloat rounds f to the given number of decimal places, half to even.
// The rounding happens on the shortest decimal representation of f so that
// values such as 0.1+0.2 round to the same value as 0.3.
func roundFloat(f float64, precision int) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	var d apd.Decimal
	if _, err := d.SetFloat64(f); err != nil {
		return f
	}
	// Enough digits to hold the integer part of any float64 plus the
	// requested fraction.
	ctx := apd.BaseContext.WithPrecision(uint32(400 + precision))
	ctx.Rounding = apd.RoundHalfEven
	if _, err := ctx.Quantize(&d, &d, int32(-precision)); err != nil {
		return f
	}
	ret, err := d.Float64()
	if err != nil {
		return f
	}
	return ret
}
