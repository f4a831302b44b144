package compare

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// FailureKind classifies why a comparison could not be made.
type FailureKind int

const (
	SyntaxError FailureKind = iota + 1
	ExecutionError
	ComparisonInternalError
)

func (k FailureKind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case ExecutionError:
		return "ExecutionError"
	case ComparisonInternalError:
		return "ComparisonInternalError"
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

func (k FailureKind) MarshalText() ([]byte, error) {
	switch k {
	case SyntaxError, ExecutionError, ComparisonInternalError:
		return []byte(k.String()), nil
	}
	return nil, errors.AssertionFailedf("unknown failure kind %d", int(k))
}

// Failure describes a stage which failed before results could be compared.
type Failure struct {
	Kind  FailureKind `json:"kind"`
	Stage string      `json:"stage"`
	// Query is "original" or "optimized".
	Query   string `json:"query,omitempty"`
	Message string `json:"message"`
	Timeout bool   `json:"timeout,omitempty"`
}

// Verdict is the result of comparing two result sets.
type Verdict struct {
	Identical          bool         `json:"identical"`
	Differences        []Difference `json:"differences"`
	VariancePercentage *float64     `json:"variance_percentage"`
	ApproximateUsed    bool         `json:"approximate_used"`
	OriginalRowCount   int          `json:"original_row_count"`
	OptimizedRowCount  int          `json:"optimized_row_count"`
	Summary            string       `json:"summary"`
	OrderingTrusted    bool         `json:"ordering_trusted"`
	Failure            *Failure     `json:"failure,omitempty"`
}

// VerdictInput holds the outcomes of every comparison stage.
type VerdictInput struct {
	SchemaDifferences []Difference
	ValueDifferences  []Difference
	OriginalRowCount  int
	OptimizedRowCount int
	Variance          float64
	HasVariance       bool
	OrderingTrusted   bool
}

const orderingCaveat = " Caveat: row ordering could not be fully neutralized."

// BuildVerdict aggregates the comparison stages into a verdict.
func BuildVerdict(in VerdictInput) Verdict {
	v := Verdict{
		Differences:       make([]Difference, 0, len(in.SchemaDifferences)+len(in.ValueDifferences)),
		OriginalRowCount:  in.OriginalRowCount,
		OptimizedRowCount: in.OptimizedRowCount,
		OrderingTrusted:   in.OrderingTrusted,
		ApproximateUsed:   in.HasVariance,
	}
	v.Differences = append(v.Differences, in.SchemaDifferences...)
	v.Differences = append(v.Differences, in.ValueDifferences...)
	v.Identical = len(v.Differences) == 0
	if in.HasVariance {
		variance := in.Variance
		v.VariancePercentage = &variance
	}

	switch {
	case !v.Identical:
		v.Summary = fmt.Sprintf("Results differ: %d difference(s) found.", len(v.Differences))
	case v.ApproximateUsed:
		v.Summary = fmt.Sprintf(
			"Results match within tolerance (max variance %.2f%%, %d rows).",
			in.Variance,
			v.OriginalRowCount,
		)
	case v.OriginalRowCount == 0:
		v.Summary = "Results are identical: no rows, vacuously identical."
	default:
		v.Summary = fmt.Sprintf("Results are identical (%d rows).", v.OriginalRowCount)
	}
	if !in.OrderingTrusted {
		v.Summary += orderingCaveat
	}
	return v
}

// FailedVerdict returns the verdict for a comparison which could not run.
func FailedVerdict(f Failure) Verdict {
	return Verdict{
		Differences:     []Difference{},
		OrderingTrusted: true,
		Summary:         fmt.Sprintf("Validation failed at %s: %s", f.Stage, f.Message),
		Failure:         &f,
	}
}
