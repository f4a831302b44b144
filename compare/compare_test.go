package compare

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/rewritecheck/resultset"
	"github.com/cockroachdb/rewritecheck/testutils"
	"github.com/stretchr/testify/require"
)

func mustCompare(t *testing.T, a, b resultset.ResultSet, policy Policy) Verdict {
	t.Helper()
	v, err := Compare(a, b, policy)
	require.NoError(t, err)
	return v
}

func TestCompareScenarios(t *testing.T) {
	for _, tc := range []struct {
		desc      string
		original  string
		optimized string
		policy    Policy
		expected  Verdict
	}{
		{
			desc:      "exact match",
			original:  "id:int | amt:float\n1 | 100.0",
			optimized: "id:int | amt:float\n1 | 100.0",
			policy:    DefaultPolicy(),
			expected: Verdict{
				Identical:         true,
				Differences:       []Difference{},
				OriginalRowCount:  1,
				OptimizedRowCount: 1,
				OrderingTrusted:   true,
				Summary:           "Results are identical (1 rows).",
			},
		},
		{
			desc:      "tolerant pass",
			original:  "id:int | amt:int\n1 | 100",
			optimized: "id:int | amt:int\n1 | 95",
			policy:    TolerantPolicy(10),
			expected: Verdict{
				Identical:          true,
				Differences:        []Difference{},
				VariancePercentage: floatPtr(5.0),
				ApproximateUsed:    true,
				OriginalRowCount:   1,
				OptimizedRowCount:  1,
				OrderingTrusted:    true,
				Summary:            "Results match within tolerance (max variance 5.00%, 1 rows).",
			},
		},
		{
			desc:      "tolerant fail",
			original:  "id:int | amt:int\n1 | 100",
			optimized: "id:int | amt:int\n1 | 95",
			policy:    TolerantPolicy(2),
			expected: Verdict{
				Differences: []Difference{
					{Kind: VarianceExceeded, Column: "amt", Detail: "max variance 5.00% > 2% threshold"},
				},
				// The id column still matched within tolerance.
				VariancePercentage: floatPtr(0),
				ApproximateUsed:    true,
				OriginalRowCount:   1,
				OptimizedRowCount:  1,
				OrderingTrusted:    true,
				Summary:            "Results differ: 1 difference(s) found.",
			},
		},
		{
			desc:      "row count mismatch",
			original:  "id:int\n1\n2",
			optimized: "id:int\n1\n2\n3",
			policy:    TolerantPolicy(50),
			expected: Verdict{
				Differences: []Difference{
					{Kind: RowCountMismatch, Detail: "original=2, optimized=3"},
				},
				OriginalRowCount:  2,
				OptimizedRowCount: 3,
				OrderingTrusted:   true,
				Summary:           "Results differ: 1 difference(s) found.",
			},
		},
		{
			desc:      "schema mismatch",
			original:  "id:int | name:string\n1 | a",
			optimized: "id:int | name:string | extra:int\n1 | a | 5",
			policy:    DefaultPolicy(),
			expected: Verdict{
				Differences: []Difference{
					{Kind: SchemaMismatch, Detail: "only in optimized: {extra}"},
				},
				OriginalRowCount:  1,
				OptimizedRowCount: 1,
				OrderingTrusted:   true,
				Summary:           "Results differ: 1 difference(s) found.",
			},
		},
		{
			desc:      "vacuous equality",
			original:  "id:int | name:string",
			optimized: "id:int | name:string",
			policy:    DefaultPolicy(),
			expected: Verdict{
				Identical:       true,
				Differences:     []Difference{},
				OrderingTrusted: true,
				Summary:         "Results are identical: no rows, vacuously identical.",
			},
		},
		{
			desc:      "vacuous equality ignores column order",
			original:  "id:int | name:string",
			optimized: "name:string | id:int",
			policy:    DefaultPolicy(),
			expected: Verdict{
				Identical:       true,
				Differences:     []Difference{},
				OrderingTrusted: true,
				Summary:         "Results are identical: no rows, vacuously identical.",
			},
		},
		{
			desc:      "unorderable rows are compared in execution order",
			original:  "v:any\n1\nx",
			optimized: "v:any\n1\nx",
			policy:    DefaultPolicy(),
			expected: Verdict{
				Identical:         true,
				Differences:       []Difference{},
				OriginalRowCount:  2,
				OptimizedRowCount: 2,
				OrderingTrusted:   false,
				Summary:           "Results are identical (2 rows). Caveat: row ordering could not be fully neutralized.",
			},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			a := testutils.ParseResultSet(t, tc.original)
			b := testutils.ParseResultSet(t, tc.optimized)
			require.Equal(t, tc.expected, mustCompare(t, a, b, tc.policy))
		})
	}
}

func TestCompareProperties(t *testing.T) {
	rs := testutils.ParseResultSet(t, `
id:int | name:string | amt:float | d:date     | ok:bool
1      | a           | 1.5       | 2020-01-01 | true
2      | NULL        | 2.25      | 2020-01-02 | false
3      | c           | NULL      | NULL       | true
3      | c           | NULL      | NULL       | true
4      | "d "        | -0.75     | 2021-06-30 | NULL
`)
	policies := map[string]Policy{
		"strict":   DefaultPolicy(),
		"tolerant": TolerantPolicy(0),
	}
	for name, policy := range policies {
		t.Run(name, func(t *testing.T) {
			t.Run("self comparison", func(t *testing.T) {
				v := mustCompare(t, rs, rs, policy)
				require.True(t, v.Identical)
				require.Empty(t, v.Differences)
			})

			t.Run("permutation", func(t *testing.T) {
				rng := rand.New(rand.NewSource(1))
				for i := 0; i < 10; i++ {
					rows := rs.Rows()
					rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
					permuted := resultset.MustNew(rs.Columns(), rows)
					v := mustCompare(t, rs, permuted, policy)
					require.True(t, v.Identical, v.Summary)
					require.True(t, v.OrderingTrusted)
				}
			})

			t.Run("idempotent", func(t *testing.T) {
				other := testutils.ParseResultSet(t, "id:int | name:string | amt:float | d:date | ok:bool\n1 | a | 1.5 | 2020-01-01 | true")
				first := mustCompare(t, rs, other, policy)
				for i := 0; i < 5; i++ {
					require.Equal(t, first, mustCompare(t, rs, other, policy))
				}
			})

			t.Run("inputs are not mutated", func(t *testing.T) {
				before := rs.Rows()
				_ = mustCompare(t, rs, rs, policy)
				require.Equal(t, before, rs.Rows())
			})
		})
	}
}

func TestComparePermutationMixedNumbers(t *testing.T) {
	// Integral NUMERIC values arrive as Ints and fractional ones as Floats.
	vals := []resultset.Value{
		resultset.MakeInt(1<<53 + 1),
		resultset.MakeFloat(1 << 53),
		resultset.MakeInt(1 << 53),
		resultset.MakeFloat(2.5),
		resultset.MakeInt(2),
	}
	rows := make([]resultset.Row, len(vals))
	for i, v := range vals {
		rows[i] = resultset.Row{v}
	}
	rs := resultset.MustNew([]string{"x"}, rows)

	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		permuted := rs.Rows()
		rng.Shuffle(len(permuted), func(i, j int) { permuted[i], permuted[j] = permuted[j], permuted[i] })
		v := mustCompare(t, rs, resultset.MustNew(rs.Columns(), permuted), DefaultPolicy())
		require.True(t, v.Identical, "%s %v", v.Summary, v.Differences)
		require.True(t, v.OrderingTrusted)
	}
}

func TestCompareInvalidPolicy(t *testing.T) {
	rs := testutils.ParseResultSet(t, "id:int\n1")
	_, err := Compare(rs, rs, Policy{DecimalRoundingPrecision: -1})
	require.EqualError(t, err, "decimal rounding precision must be >= 0, got -1")
}

func floatPtr(f float64) *float64 {
	return &f
}
