package compare

import (
	"fmt"
	"sort"
	"strings"
)

// CompareSchema compares the column names of two result sets. Differing
// column sets always produce differences. When requireOrder is set, the same
// columns in a different order also produce a difference.
func CompareSchema(original, optimized []string, requireOrder bool) []Difference {
	onlyOriginal := setDifference(original, optimized)
	onlyOptimized := setDifference(optimized, original)

	var diffs []Difference
	if len(onlyOriginal) > 0 {
		diffs = append(diffs, Difference{
			Kind:   SchemaMismatch,
			Detail: fmt.Sprintf("only in original: {%s}", strings.Join(onlyOriginal, ", ")),
		})
	}
	if len(onlyOptimized) > 0 {
		diffs = append(diffs, Difference{
			Kind:   SchemaMismatch,
			Detail: fmt.Sprintf("only in optimized: {%s}", strings.Join(onlyOptimized, ", ")),
		})
	}
	if len(diffs) > 0 || !requireOrder {
		return diffs
	}
	for i := range original {
		if original[i] != optimized[i] {
			return []Difference{{
				Kind: SchemaMismatch,
				Detail: fmt.Sprintf(
					"column order differs: original [%s], optimized [%s]",
					strings.Join(original, ", "),
					strings.Join(optimized, ", "),
				),
			}}
		}
	}
	return nil
}

// setDifference returns the sorted names in a that are not in b.
func setDifference(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, c := range b {
		inB[c] = struct{}{}
	}
	var ret []string
	for _, c := range a {
		if _, ok := inB[c]; !ok {
			ret = append(ret, c)
		}
	}
	sort.Strings(ret)
	return ret
}
