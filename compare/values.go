package compare

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cockroachdb/rewritecheck/resultset"
)

// maxCellDiagnostics caps the cells attached to a single difference.
const maxCellDiagnostics = 10

// ColumnVariance is the maximum relative deviation observed in a column
// which matched within tolerance.
type ColumnVariance struct {
	Column     string
	MaxPercent float64
}

// ValueResult is the outcome of comparing the cells of two result sets.
type ValueResult struct {
	Differences []Difference
	// Variances holds the columns which were matched within tolerance, in
	// original column order.
	Variances []ColumnVariance
}

// CompareValues compares two normalized result sets cell by cell, column by
// column. Only columns present on both sides are compared; schema
// differences are reported by CompareSchema.
func CompareValues(original, optimized Normalized, policy Policy) ValueResult {
	if original.NumRows() != optimized.NumRows() {
		return ValueResult{
			Differences: []Difference{{
				Kind:   RowCountMismatch,
				Detail: fmt.Sprintf("original=%d, optimized=%d", original.NumRows(), optimized.NumRows()),
			}},
		}
	}
	if original.NumRows() == 0 {
		return ValueResult{}
	}

	var res ValueResult
	for origIdx, col := range original.Columns {
		optIdx, ok := optimized.ColumnIndex(col)
		if !ok {
			continue
		}
		cp := columnPair{
			name:      col,
			original:  original,
			optimized: optimized,
			origIdx:   origIdx,
			optIdx:    optIdx,
			cells:     policy.CellDiagnostics,
		}
		if policy.StrictMode || !cp.isNumeric() {
			if d, ok := cp.compareExact(); !ok {
				res.Differences = append(res.Differences, d)
			}
			continue
		}
		maxVariance, d, ok := cp.compareTolerant(policy.MaxVariancePercent)
		if !ok {
			res.Differences = append(res.Differences, d)
			continue
		}
		res.Variances = append(res.Variances, ColumnVariance{Column: col, MaxPercent: maxVariance})
	}
	return res
}

type columnPair struct {
	name      string
	original  Normalized
	optimized Normalized
	origIdx   int
	optIdx    int
	cells     bool
}

func (cp columnPair) at(row int) (resultset.Value, resultset.Value) {
	return cp.original.Rows[row][cp.origIdx], cp.optimized.Rows[row][cp.optIdx]
}

// isNumeric returns whether every non-null cell on both sides is an Int or
// a Float. Columns with no non-null cells are not numeric.
func (cp columnPair) isNumeric() bool {
	seen := false
	for row := range cp.original.Rows {
		a, b := cp.at(row)
		for _, v := range []resultset.Value{a, b} {
			switch v.Kind() {
			case resultset.KindNull:
			case resultset.KindInt, resultset.KindFloat:
				seen = true
			case resultset.KindBool, resultset.KindString, resultset.KindDate:
				return false
			default:
				return false
			}
		}
	}
	return seen
}

type mismatchTracker struct {
	cp         columnPair
	mismatches int
	cells      []CellDifference
}

func (t *mismatchTracker) add(row int, a, b resultset.Value) {
	t.mismatches++
	if t.cp.cells && len(t.cells) < maxCellDiagnostics {
		t.cells = append(t.cells, CellDifference{Row: row, Original: a, Optimized: b})
	}
}

func (t *mismatchTracker) difference(detail string) Difference {
	return Difference{
		Kind:   ValueMismatch,
		Column: t.cp.name,
		Detail: fmt.Sprintf("values differ in %d of %d rows%s", t.mismatches, len(t.cp.original.Rows), detail),
		Cells:  t.cells,
	}
}

func (cp columnPair) compareExact() (Difference, bool) {
	t := mismatchTracker{cp: cp}
	for row := range cp.original.Rows {
		if a, b := cp.at(row); !a.Equal(b) {
			t.add(row, a, b)
		}
	}
	if t.mismatches > 0 {
		return t.difference(""), false
	}
	return Difference{}, true
}

// compareTolerant compares a numeric column allowing each cell to deviate
// from the original by up to maxPercent. Nulls, non-finite values and zeros
// in the original must match exactly.
func (cp columnPair) compareTolerant(maxPercent float64) (float64, Difference, bool) {
	t := mismatchTracker{cp: cp}
	var maxVariance float64
	var exceeding []CellDifference
	for row := range cp.original.Rows {
		a, b := cp.at(row)
		if a.Equal(b) {
			continue
		}
		if a.IsNull() || b.IsNull() {
			t.add(row, a, b)
			continue
		}
		af, bf := a.Float(), b.Float()
		if af == 0 || !isFinite(af) || !isFinite(bf) {
			t.add(row, a, b)
			continue
		}
		relDiff := math.Abs(af-bf) / math.Abs(af) * 100
		if relDiff > maxVariance {
			maxVariance = relDiff
		}
		if cp.cells && relDiff > maxPercent && len(exceeding) < maxCellDiagnostics {
			exceeding = append(exceeding, CellDifference{Row: row, Original: a, Optimized: b})
		}
	}
	if t.mismatches > 0 {
		return 0, t.difference(" (nulls, zeros and non-finite values must match exactly)"), false
	}
	if maxVariance > maxPercent {
		return 0, Difference{
			Kind:   VarianceExceeded,
			Column: cp.name,
			Detail: fmt.Sprintf(
				"max variance %.2f%% > %s%% threshold",
				maxVariance,
				strconv.FormatFloat(maxPercent, 'f', -1, 64),
			),
			Cells: exceeding,
		}, false
	}
	return maxVariance, Difference{}, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
