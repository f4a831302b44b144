package report

import (
	"time"

	"github.com/cockroachdb/rewritecheck/compare"
)

// Artifact is the persisted JSON form of a report.
type Artifact struct {
	Timestamp         time.Time         `json:"timestamp"`
	Candidate         string            `json:"candidate,omitempty"`
	Queries           Queries           `json:"queries"`
	ComparisonResults ComparisonResults `json:"comparison_results"`
	SampleData        SampleData        `json:"sample_data"`
	Performance       *Performance      `json:"performance,omitempty"`
}

type Queries struct {
	Original  string `json:"original"`
	Optimized string `json:"optimized"`
}

type ComparisonResults struct {
	Identical          bool                 `json:"identical"`
	OriginalRowCount   int                  `json:"original_row_count"`
	OptimizedRowCount  int                  `json:"optimized_row_count"`
	Differences        []compare.Difference `json:"differences"`
	VariancePercentage *float64             `json:"variance_percentage"`
	ApproximateUsed    bool                 `json:"approximate_used"`
	Summary            string               `json:"summary"`
	OrderingTrusted    bool                 `json:"ordering_trusted"`
	Failure            *compare.Failure     `json:"failure,omitempty"`
}

type SampleData struct {
	Original  []Record `json:"original"`
	Optimized []Record `json:"optimized"`
}

// NewArtifact captures rep, and the query texts it was produced from, as of
// now.
func NewArtifact(now time.Time, candidate, original, optimized string, rep Report) Artifact {
	v := rep.Verdict
	diffs := v.Differences
	if diffs == nil {
		diffs = []compare.Difference{}
	}
	return Artifact{
		Timestamp: now.UTC(),
		Candidate: candidate,
		Queries: Queries{
			Original:  original,
			Optimized: optimized,
		},
		ComparisonResults: ComparisonResults{
			Identical:          v.Identical,
			OriginalRowCount:   v.OriginalRowCount,
			OptimizedRowCount:  v.OptimizedRowCount,
			Differences:        diffs,
			VariancePercentage: v.VariancePercentage,
			ApproximateUsed:    v.ApproximateUsed,
			Summary:            v.Summary,
			OrderingTrusted:    v.OrderingTrusted,
			Failure:            v.Failure,
		},
		SampleData: SampleData{
			Original:  rep.Original.Records(),
			Optimized: rep.Optimized.Records(),
		},
		Performance: rep.Performance,
	}
}
