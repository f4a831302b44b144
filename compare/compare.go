// Package compare decides whether two query results are equivalent.
//
// The pipeline is pure: result sets are normalized, their schemas and cells
// are compared under a Policy, and the outcome is summarized in a Verdict.
package compare

import (
	"github.com/cockroachdb/rewritecheck/resultset"
)

// Compare compares the result of an original query against the result of
// its candidate rewrite. An error is only returned for an invalid policy.
func Compare(original, optimized resultset.ResultSet, policy Policy) (Verdict, error) {
	if err := policy.Validate(); err != nil {
		return Verdict{}, err
	}
	return CompareNormalized(
		Normalize(original, policy.DecimalRoundingPrecision),
		Normalize(optimized, policy.DecimalRoundingPrecision),
		policy,
	), nil
}

// CompareNormalized compares result sets already normalized with the
// policy's rounding precision. The policy must be valid.
func CompareNormalized(original, optimized Normalized, policy Policy) Verdict {
	// Empty results only need matching column sets.
	requireOrder := policy.RequireColumnOrder && (original.NumRows() > 0 || optimized.NumRows() > 0)
	schemaDiffs := CompareSchema(original.Columns, optimized.Columns, requireOrder)
	valueRes := CompareValues(original, optimized, policy)
	variance, hasVariance := AggregateVariance(valueRes.Variances)

	return BuildVerdict(VerdictInput{
		SchemaDifferences: schemaDiffs,
		ValueDifferences:  valueRes.Differences,
		OriginalRowCount:  original.NumRows(),
		OptimizedRowCount: optimized.NumRows(),
		Variance:          variance,
		HasVariance:       hasVariance,
		OrderingTrusted:   original.OrderingTrusted && optimized.OrderingTrusted,
	})
}
