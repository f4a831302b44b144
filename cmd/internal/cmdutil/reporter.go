package cmdutil

import (
	"context"

	"github.com/cockroachdb/rewritecheck/validate/inconsistency"
	"github.com/rs/zerolog"
)

// Reporter builds the reporter shared by the validation commands. Extra
// reporters are added after the log reporter.
func Reporter(
	ctx context.Context, logger zerolog.Logger, extra ...inconsistency.Reporter,
) (inconsistency.CombinedReporter, error) {
	reporter := inconsistency.CombinedReporter{}
	reporter.Reporters = append(reporter.Reporters, &inconsistency.LogReporter{Logger: logger})
	reporter.Reporters = append(reporter.Reporters, extra...)
	store, err := ReportStore(ctx, logger)
	if err != nil {
		return reporter, err
	}
	if store != nil {
		reporter.Reporters = append(reporter.Reporters, inconsistency.StoreReporter{Store: store, Logger: logger})
	}
	return reporter, nil
}
