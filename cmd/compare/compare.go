package compare

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/cmd/internal/cmdutil"
	"github.com/cockroachdb/rewritecheck/report"
	"github.com/cockroachdb/rewritecheck/validate"
	"github.com/cockroachdb/rewritecheck/validate/inconsistency"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	var (
		candidate     validate.Candidate
		originalFile  string
		optimizedFile string
		printJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Validate that a rewritten query returns the same results as the original.",
		Long: `Compare runs the original query and its rewrite against the same database and
reports whether they return equivalent results.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			logger, err := cmdutil.Logger()
			if err != nil {
				return err
			}
			cmdutil.RunMetricsServer(logger)

			if err := readQuery(&candidate.OriginalQuery, originalFile); err != nil {
				return err
			}
			if err := readQuery(&candidate.OptimizedQuery, optimizedFile); err != nil {
				return err
			}
			if candidate.OriginalQuery == "" || candidate.OptimizedQuery == "" {
				return errors.Newf("both queries must be set (--original/--original-file, --optimized/--optimized-file)")
			}

			var extra []inconsistency.Reporter
			if !printJSON {
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
			defer func() { _ = gw.Close(ctx) }()

			out, err := validate.New(gw, logger, reporter, cmdutil.ValidateOpts()...).Validate(ctx, candidate)
			if err != nil {
				return err
			}
			if printJSON {
				a := report.NewArtifact(time.Now(), candidate.Name, candidate.OriginalQuery, candidate.OptimizedQuery, out.Report)
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(a); err != nil {
					return err
				}
			}
			if out.Report.Status != report.StatusPass {
				return errors.Newf("validation failed: %s", out.Verdict.Summary)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(
		&candidate.Name,
		"name",
		"",
		"name of the rewrite, used to name persisted reports",
	)
	cmd.PersistentFlags().StringVar(
		&candidate.OriginalQuery,
		"original",
		"",
		"original query",
	)
	cmd.PersistentFlags().StringVar(
		&candidate.OptimizedQuery,
		"optimized",
		"",
		"rewritten query",
	)
	cmd.PersistentFlags().StringVar(
		&originalFile,
		"original-file",
		"",
		"file to read the original query from",
	)
	cmd.PersistentFlags().StringVar(
		&optimizedFile,
		"optimized-file",
		"",
		"file to read the rewritten query from",
	)
	cmd.PersistentFlags().StringSliceVar(
		&candidate.ClaimedPatterns,
		"claimed-patterns",
		nil,
		"optimization patterns the rewrite claims to apply, logged but not trusted",
	)
	cmd.PersistentFlags().BoolVar(
		&printJSON,
		"json",
		false,
		"whether to print the JSON report instead of the text report",
	)
	cmd.MarkFlagsMutuallyExclusive("original", "original-file")
	cmd.MarkFlagsMutuallyExclusive("optimized", "optimized-file")

	cmdutil.RegisterDBConnFlags(cmd)
	cmdutil.RegisterLoggerFlags(cmd)
	cmdutil.RegisterMetricsFlags(cmd)
	cmdutil.RegisterPolicyFlags(cmd)
	cmdutil.RegisterReportStoreFlags(cmd)
	return cmd
}

func readQuery(dst *string, path string) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "error reading query from %s", path)
	}
	*dst = string(b)
	return nil
}
