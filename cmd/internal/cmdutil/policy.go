package cmdutil

import (
	"fmt"
	"time"

	"github.com/cockroachdb/rewritecheck/compare"
	"github.com/cockroachdb/rewritecheck/gateway"
	"github.com/cockroachdb/rewritecheck/validate"
	"github.com/spf13/cobra"
)

type validateConfig struct {
	maxVariance    float64
	precision      int
	rowDisplayCap  int
	anyColumnOrder bool
	cellDiagnostic bool
	timeout        time.Duration
	rowLimit       int
	perf           bool
	perfRuns       int
}

var validateCfg = validateConfig{
	maxVariance:   -1,
	precision:     compare.DefaultDecimalRoundingPrecision,
	rowDisplayCap: compare.DefaultRowDisplayCap,
	timeout:       gateway.DefaultTimeout,
}

func RegisterPolicyFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Float64Var(
		&validateCfg.maxVariance,
		"max-variance",
		validateCfg.maxVariance,
		"maximum deviation allowed in numeric columns, in percent of the original value (negative compares strictly)",
	)
	cmd.PersistentFlags().IntVar(
		&validateCfg.precision,
		"precision",
		validateCfg.precision,
		"number of decimal places floats are rounded to before comparison",
	)
	cmd.PersistentFlags().IntVar(
		&validateCfg.rowDisplayCap,
		"row-display-cap",
		validateCfg.rowDisplayCap,
		"number of sample rows shown per query in reports (-1 shows all rows)",
	)
	cmd.PersistentFlags().BoolVar(
		&validateCfg.anyColumnOrder,
		"any-column-order",
		false,
		"whether a rewrite may return the same columns in a different order",
	)
	cmd.PersistentFlags().BoolVar(
		&validateCfg.cellDiagnostic,
		"cell-diagnostics",
		false,
		"whether to report the cells which differ",
	)
	cmd.PersistentFlags().DurationVar(
		&validateCfg.timeout,
		"timeout",
		validateCfg.timeout,
		"maximum amount of time each query may run for",
	)
	cmd.PersistentFlags().IntVar(
		&validateCfg.rowLimit,
		"row-limit",
		0,
		"if set, maximum number of rows read from each query",
	)
	cmd.PersistentFlags().BoolVar(
		&validateCfg.perf,
		"perf",
		false,
		fmt.Sprintf("whether to compare performance, running each query %d times", validate.DefaultPerformanceRuns),
	)
	cmd.PersistentFlags().IntVar(
		&validateCfg.perfRuns,
		"perf-runs",
		0,
		"if set, number of times each query is run to compare performance (implies --perf)",
	)
}

// PerfRuns returns the number of performance runs configured by flags, zero
// when performance is not compared.
func PerfRuns() int {
	switch {
	case validateCfg.perfRuns > 0:
		return validateCfg.perfRuns
	case validateCfg.perf:
		return validate.DefaultPerformanceRuns
	}
	return 0
}

// Policy returns the comparison policy configured by flags.
func Policy() compare.Policy {
	p := compare.DefaultPolicy()
	if validateCfg.maxVariance >= 0 {
		p = compare.TolerantPolicy(validateCfg.maxVariance)
	}
	p.DecimalRoundingPrecision = validateCfg.precision
	p.RowDisplayCap = validateCfg.rowDisplayCap
	p.RequireColumnOrder = !validateCfg.anyColumnOrder
	p.CellDiagnostics = validateCfg.cellDiagnostic
	return p
}

// ValidateOpts returns the validator options configured by flags.
func ValidateOpts() []validate.Opt {
	return []validate.Opt{
		validate.WithPolicy(Policy()),
		validate.WithTimeout(validateCfg.timeout),
		validate.WithRowLimit(validateCfg.rowLimit),
		validate.WithPerformance(PerfRuns()),
	}
}
