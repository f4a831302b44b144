// Package inconsistency carries the evidence produced while validating a
// rewrite to whoever is listening.
package inconsistency

import (
	"github.com/cockroachdb/rewritecheck/compare"
	"github.com/cockroachdb/rewritecheck/report"
)

type ReportableObject interface {
	reportableObject()
}

// StatusReport is a progress message.
type StatusReport struct {
	Info string
}

// MismatchingResult is a single difference found between the results of a
// candidate's queries.
type MismatchingResult struct {
	Candidate string
	compare.Difference
}

// FailedValidation is a candidate whose queries could not be compared.
type FailedValidation struct {
	Candidate string
	compare.Failure
}

// CompletedValidation is the final report of a candidate.
type CompletedValidation struct {
	Candidate      string
	OriginalQuery  string
	OptimizedQuery string
	Report         report.Report
}

func (StatusReport) reportableObject()        {}
func (MismatchingResult) reportableObject()   {}
func (FailedValidation) reportableObject()    {}
func (CompletedValidation) reportableObject() {}
