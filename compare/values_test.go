package compare

import (
	"math"
	"testing"

	"github.com/cockroachdb/rewritecheck/resultset"
	"github.com/cockroachdb/rewritecheck/testutils"
	"github.com/stretchr/testify/require"
)

func TestCompareSchema(t *testing.T) {
	for _, tc := range []struct {
		desc         string
		original     []string
		optimized    []string
		requireOrder bool
		expected     []Difference
	}{
		{
			desc:         "same",
			original:     []string{"a", "b"},
			optimized:    []string{"a", "b"},
			requireOrder: true,
		},
		{
			desc:         "reordered",
			original:     []string{"a", "b"},
			optimized:    []string{"b", "a"},
			requireOrder: true,
			expected: []Difference{
				{Kind: SchemaMismatch, Detail: "column order differs: original [a, b], optimized [b, a]"},
			},
		},
		{
			desc:      "reordered without order requirement",
			original:  []string{"a", "b"},
			optimized: []string{"b", "a"},
		},
		{
			desc:      "set mismatch ignores order requirement",
			original:  []string{"z", "a", "b"},
			optimized: []string{"a", "c"},
			expected: []Difference{
				{Kind: SchemaMismatch, Detail: "only in original: {b, z}"},
				{Kind: SchemaMismatch, Detail: "only in optimized: {c}"},
			},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.expected, CompareSchema(tc.original, tc.optimized, tc.requireOrder))
		})
	}
}

func TestCompareValuesNonFinite(t *testing.T) {
	mk := func(vals ...float64) Normalized {
		rows := make([]resultset.Row, len(vals))
		for i, v := range vals {
			rows[i] = resultset.Row{resultset.MakeInt(int64(i)), resultset.MakeFloat(v)}
		}
		return Normalize(resultset.MustNew([]string{"id", "v"}, rows), DefaultDecimalRoundingPrecision)
	}
	policy := TolerantPolicy(10)

	t.Run("matching non-finite values", func(t *testing.T) {
		res := CompareValues(mk(math.Inf(1), math.NaN(), 1), mk(math.Inf(1), math.NaN(), 1.05), policy)
		require.Empty(t, res.Differences)
		require.Len(t, res.Variances, 2)
		require.InDelta(t, 5.0, res.Variances[1].MaxPercent, 1e-9)
	})

	t.Run("mismatching non-finite values", func(t *testing.T) {
		res := CompareValues(mk(math.Inf(1), 1), mk(math.Inf(-1), 1), policy)
		require.Equal(t, []Difference{{
			Kind:   ValueMismatch,
			Column: "v",
			Detail: "values differ in 1 of 2 rows (nulls, zeros and non-finite values must match exactly)",
		}}, res.Differences)
		require.Equal(t, []ColumnVariance{{Column: "id", MaxPercent: 0}}, res.Variances)
	})
}

func TestCompareValuesNumericColumnDetection(t *testing.T) {
	original := testutils.ParseResultSet(t, "v:any\n1\n2.5")
	optimized := testutils.ParseResultSet(t, "v:any\n1\n2.6")
	v, err := Compare(original, optimized, TolerantPolicy(5))
	require.NoError(t, err)
	require.True(t, v.Identical)
	require.True(t, v.ApproximateUsed)
	require.InDelta(t, 4.0, *v.VariancePercentage, 1e-9)
}

func TestAggregateVariance(t *testing.T) {
	_, ok := AggregateVariance(nil)
	require.False(t, ok)

	v, ok := AggregateVariance([]ColumnVariance{
		{Column: "a", MaxPercent: 1},
		{Column: "b", MaxPercent: 3},
		{Column: "c", MaxPercent: 2},
	})
	require.True(t, ok)
	require.Equal(t, 3.0, v)
}

func TestFailedVerdict(t *testing.T) {
	v := FailedVerdict(Failure{
		Kind:    ExecutionError,
		Stage:   "execute",
		Query:   "optimized",
		Message: "relation \"t\" does not exist",
	})
	require.False(t, v.Identical)
	require.Equal(t, `Validation failed at execute: relation "t" does not exist`, v.Summary)
	require.Equal(t, ExecutionError, v.Failure.Kind)
}
