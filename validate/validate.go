// Package validate checks candidate rewrites of SQL queries by running both
// the original and the rewrite and comparing what they return.
package validate

import (
	"context"
	"time"

	"github.com/cockroachdb/rewritecheck/compare"
	"github.com/cockroachdb/rewritecheck/gateway"
	"github.com/cockroachdb/rewritecheck/report"
	"github.com/cockroachdb/rewritecheck/resultset"
	"github.com/cockroachdb/rewritecheck/validate/inconsistency"
	"github.com/rs/zerolog"
)

const DefaultPerformanceRuns = 3

// Candidate is a rewrite to validate. ClaimedPatterns are whatever the
// producer of the rewrite says it applied; they are logged, never trusted.
type Candidate struct {
	Name            string   `yaml:"name"`
	OriginalQuery   string   `yaml:"original"`
	OptimizedQuery  string   `yaml:"optimized"`
	ClaimedPatterns []string `yaml:"claimed_patterns"`
}

// Outcome is everything learned about a candidate.
type Outcome struct {
	Candidate Candidate
	// Stage is the last stage reached.
	Stage   Stage
	Verdict compare.Verdict
	Report  report.Report
	// Truncated is set when the row limit cut off either result set, in which
	// case only the leading rows were compared.
	Truncated bool
	Duration  time.Duration
}

type Opt func(*validateOpts)

type validateOpts struct {
	policy   compare.Policy
	timeout  time.Duration
	rowLimit int
	perfRuns int
}

func WithPolicy(p compare.Policy) Opt {
	return func(o *validateOpts) {
		o.policy = p
	}
}

// WithTimeout bounds every gateway call.
func WithTimeout(d time.Duration) Opt {
	return func(o *validateOpts) {
		o.timeout = d
	}
}

// WithRowLimit caps the rows read from both queries alike.
func WithRowLimit(n int) Opt {
	return func(o *validateOpts) {
		o.rowLimit = n
	}
}

// WithPerformance times each query over runs executions. Zero disables the
// performance pass.
func WithPerformance(runs int) Opt {
	return func(o *validateOpts) {
		o.perfRuns = runs
	}
}

type Validator struct {
	gw       gateway.Gateway
	logger   zerolog.Logger
	reporter inconsistency.Reporter
	opts     validateOpts
}

func New(
	gw gateway.Gateway, logger zerolog.Logger, reporter inconsistency.Reporter, inOpts ...Opt,
) *Validator {
	opts := validateOpts{
		policy:  compare.DefaultPolicy(),
		timeout: gateway.DefaultTimeout,
	}
	for _, applyOpt := range inOpts {
		applyOpt(&opts)
	}
	return &Validator{gw: gw, logger: logger, reporter: reporter, opts: opts}
}

// withGateway returns a copy of v which talks to gw.
func (v *Validator) withGateway(gw gateway.Gateway) *Validator {
	ret := *v
	ret.gw = gw
	return &ret
}

// Validate runs the candidate's queries one after the other and compares
// their results. Failures of the queries themselves are reported in the
// outcome's verdict; the error is only set for an invalid policy.
func (v *Validator) Validate(ctx context.Context, c Candidate) (Outcome, error) {
	if err := v.opts.policy.Validate(); err != nil {
		return Outcome{}, err
	}
	runningMetric.Inc()
	defer runningMetric.Dec()

	start := time.Now()
	logger := v.logger.With().Str("candidate", c.Name).Logger()
	if len(c.ClaimedPatterns) > 0 {
		logger.Debug().Strs("claimed_patterns", c.ClaimedPatterns).Msgf("ignoring claimed patterns, verifying results instead")
	}

	out := v.run(ctx, logger, c)
	out.Candidate = c
	out.Duration = time.Since(start)
	comparisonDurationMetric.Observe(out.Duration.Seconds())

	switch {
	case out.Verdict.Failure != nil:
		comparisonsMetric.WithLabelValues(resultError).Inc()
		v.reporter.Report(inconsistency.FailedValidation{Candidate: c.Name, Failure: *out.Verdict.Failure})
	case out.Verdict.Identical:
		comparisonsMetric.WithLabelValues(resultPass).Inc()
	default:
		comparisonsMetric.WithLabelValues(resultFail).Inc()
		for _, d := range out.Verdict.Differences {
			v.reporter.Report(inconsistency.MismatchingResult{Candidate: c.Name, Difference: d})
		}
	}
	v.reporter.Report(inconsistency.CompletedValidation{
		Candidate:      c.Name,
		OriginalQuery:  c.OriginalQuery,
		OptimizedQuery: c.OptimizedQuery,
		Report:         out.Report,
	})
	return out, nil
}

type labelledQuery struct {
	label string
	text  string
}

func (v *Validator) run(ctx context.Context, logger zerolog.Logger, c Candidate) Outcome {
	queries := [2]labelledQuery{
		{label: "original", text: c.OriginalQuery},
		{label: "optimized", text: c.OptimizedQuery},
	}
	stage := StageIdle

	for _, q := range queries {
		if _, err := v.gw.Execute(ctx, gateway.Request{
			Query:   q.text,
			DryRun:  true,
			Timeout: v.opts.timeout,
		}); err != nil {
			return v.failed(stage, failure(stepSyntaxCheck, q.label, err))
		}
	}
	stage = StageSyntaxChecked
	logger.Debug().Stringer("stage", stage).Msgf("queries are valid")

	var results [2]gateway.Result
	for i, q := range queries {
		res, err := v.gw.Execute(ctx, gateway.Request{
			Query:    q.text,
			Timeout:  v.opts.timeout,
			RowLimit: v.opts.rowLimit,
		})
		if err != nil {
			return v.failed(stage, failure(stepExecute, q.label, err))
		}
		results[i] = res
	}
	stage = StageExecuted
	truncated := results[0].Truncated || results[1].Truncated
	if truncated {
		logger.Warn().
			Int("row_limit", v.opts.rowLimit).
			Msgf("row limit reached, only the leading rows of each result are compared")
	}
	logger.Debug().
		Stringer("stage", stage).
		Int("original_rows", results[0].RowCount).
		Int("optimized_rows", results[1].RowCount).
		Msgf("queries executed")

	policy := v.opts.policy
	original := compare.Normalize(results[0].ResultSet, policy.DecimalRoundingPrecision)
	optimized := compare.Normalize(results[1].ResultSet, policy.DecimalRoundingPrecision)
	stage = StageNormalized
	if !original.OrderingTrusted || !optimized.OrderingTrusted {
		logger.Warn().Stringer("stage", stage).Msgf("rows could not be sorted, comparing in execution order")
	}

	verdict := compare.CompareNormalized(original, optimized, policy)
	rep := report.Render(verdict, results[0].ResultSet, results[1].ResultSet, policy.RowDisplayCap)
	stage = StageCompared
	logger.Debug().Stringer("stage", stage).Bool("identical", verdict.Identical).Msgf("results compared")

	if v.opts.perfRuns > 0 {
		perf := v.measure(ctx, queries)
		rep.Performance = &perf
	}
	return Outcome{
		Stage:     StageDone,
		Verdict:   verdict,
		Report:    rep,
		Truncated: truncated,
	}
}

var emptyResult resultset.ResultSet

func (v *Validator) failed(stage Stage, f compare.Failure) Outcome {
	verdict := compare.FailedVerdict(f)
	return Outcome{
		Stage:   stage,
		Verdict: verdict,
		Report:  report.Render(verdict, emptyResult, emptyResult, 0),
	}
}

func failure(step string, label string, err error) compare.Failure {
	gwErr := gateway.AsError(err, "")
	kind := compare.ExecutionError
	if gwErr.Kind == gateway.KindSyntax {
		kind = compare.SyntaxError
	}
	msg := err.Error()
	if gwErr.Cause != nil {
		msg = gwErr.Cause.Error()
	}
	return compare.Failure{
		Kind:    kind,
		Stage:   step,
		Query:   label,
		Message: msg,
		Timeout: gwErr.Kind == gateway.KindTimeout,
	}
}

// measure times each query over the configured number of runs. It never
// affects the verdict.
func (v *Validator) measure(ctx context.Context, queries [2]labelledQuery) report.Performance {
	perf := report.Performance{Runs: v.opts.perfRuns}
	var totals [2]time.Duration
	for run := 0; run < v.opts.perfRuns; run++ {
		for i, q := range queries {
			res, err := v.gw.Execute(ctx, gateway.Request{
				Query:    q.text,
				Timeout:  v.opts.timeout,
				RowLimit: v.opts.rowLimit,
			})
			if err != nil {
				perf.Error = q.label + " query: " + err.Error()
				return perf
			}
			totals[i] += res.Stats.Elapsed
		}
	}
	perf.OriginalAvg = totals[0] / time.Duration(v.opts.perfRuns)
	perf.OptimizedAvg = totals[1] / time.Duration(v.opts.perfRuns)
	perf.Improvement = ImprovementFraction(perf.OriginalAvg, perf.OptimizedAvg)
	return perf
}

// ImprovementFraction is how much faster optimized is than original, as a
// fraction of original. It is 0 when original took no time.
func ImprovementFraction(original, optimized time.Duration) float64 {
	if original <= 0 {
		return 0
	}
	return float64(original-optimized) / float64(original)
}
