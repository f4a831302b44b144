package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/cmd/internal/cmdutil"
	"github.com/cockroachdb/rewritecheck/report"
	"github.com/cockroachdb/rewritecheck/validate"
	"github.com/cockroachdb/rewritecheck/validate/inconsistency"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func Command() *cobra.Command {
	var (
		candidatesFile      string
		concurrency         int
		candidatesPerSecond float64
		printReports        bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Validate a file of query rewrites.",
		Long: `Batch validates every rewrite listed in a YAML file, several at a time, and
summarizes which rewrites return the same results as their original queries.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			logger, err := cmdutil.Logger()
			if err != nil {
				return err
			}
			cmdutil.RunMetricsServer(logger)

			f, err := os.Open(candidatesFile)
			if err != nil {
				return errors.Wrapf(err, "error opening candidates file")
			}
			candidates, err := LoadCandidates(f)
			_ = f.Close()
			if err != nil {
				return errors.Wrapf(err, "error reading %s", candidatesFile)
			}

			var extra []inconsistency.Reporter
			if printReports {
				extra = append(extra, inconsistency.NewTextReporter(cmd.OutOrStdout(), logger))
			}
			reporter, err := cmdutil.Reporter(ctx, logger, extra...)
			if err != nil {
				return err
			}
			defer reporter.Close()

			gw, err := cmdutil.LoadGateway(ctx, logger)
			if err != nil {
				return err
			}
			defer func() { _ = gw.Close(context.Background()) }()

			v := validate.New(gw, logger, reporter, cmdutil.ValidateOpts()...)
			reporter.Report(inconsistency.StatusReport{Info: fmt.Sprintf("validating %d candidates", len(candidates))})
			outcomes, batchErr := validate.Batch(
				ctx,
				v,
				candidates,
				validate.WithConcurrency(concurrency),
				validate.WithCandidatesPerSecond(candidatesPerSecond),
			)
			// Abandoned validations may still be running; stop their reports
			// from interleaving with the summary.
			reporter.Close()
			failed, err := WriteSummary(cmd.OutOrStdout(), outcomes)
			if err != nil {
				return err
			}
			if batchErr != nil {
				return errors.Wrapf(batchErr, "error validating candidates")
			}
			if failed > 0 {
				return errors.Newf("%d of %d candidates failed validation", failed, len(outcomes))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(
		&candidatesFile,
		"candidates",
		"",
		"YAML file listing the candidates to validate",
	)
	cmd.PersistentFlags().IntVar(
		&concurrency,
		"concurrency",
		validate.DefaultConcurrency,
		"number of candidates to validate at a time",
	)
	cmd.PersistentFlags().Float64Var(
		&candidatesPerSecond,
		"candidates-per-second",
		0,
		"if set, maximum number of validations to start per second",
	)
	cmd.PersistentFlags().BoolVar(
		&printReports,
		"reports",
		false,
		"whether to print the full text report of every candidate",
	)
	if err := cmd.MarkPersistentFlagRequired("candidates"); err != nil {
		panic(err)
	}

	cmdutil.RegisterDBConnFlags(cmd)
	cmdutil.RegisterLoggerFlags(cmd)
	cmdutil.RegisterMetricsFlags(cmd)
	cmdutil.RegisterPolicyFlags(cmd)
	cmdutil.RegisterReportStoreFlags(cmd)
	return cmd
}

type candidatesDoc struct {
	Candidates []validate.Candidate `yaml:"candidates"`
}

// LoadCandidates reads a YAML document with a top level candidates list.
// Unnamed candidates are named after their position.
//
//	candidates:
//	  - name: pushdown
//	    original: SELECT ...
//	    optimized: SELECT ...
//	    claimed_patterns: [predicate_pushdown]
func LoadCandidates(r io.Reader) ([]validate.Candidate, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f candidatesDoc
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Newf("no candidates found")
		}
		return nil, err
	}
	if len(f.Candidates) == 0 {
		return nil, errors.Newf("no candidates found")
	}
	seen := make(map[string]struct{}, len(f.Candidates))
	for i := range f.Candidates {
		c := &f.Candidates[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("candidate_%d", i+1)
		}
		if _, ok := seen[c.Name]; ok {
			return nil, errors.Newf("duplicate candidate name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.OriginalQuery == "" || c.OptimizedQuery == "" {
			return nil, errors.Newf("candidate %q must have both an original and an optimized query", c.Name)
		}
	}
	return f.Candidates, nil
}

// WriteSummary writes one line per outcome followed by totals, returning the
// number of candidates which did not pass.
func WriteSummary(w io.Writer, outcomes []validate.Outcome) (int, error) {
	failed := 0
	for _, out := range outcomes {
		if out.Report.Status != report.StatusPass {
			failed++
		}
		line := fmt.Sprintf("%s\t%s\t%s", out.Report.Status, out.Candidate.Name, out.Verdict.Summary)
		if out.Truncated {
			line += " (truncated)"
		}
		if perf := out.Report.Performance; perf != nil && perf.Error == "" {
			line += fmt.Sprintf(" (improvement %.1f%%)", perf.Improvement*100)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return failed, err
		}
	}
	_, err := fmt.Fprintf(w, "%d passed, %d failed\n", len(outcomes)-failed, failed)
	return failed, err
}
