package compare

import (
	"math"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultDecimalRoundingPrecision is the number of decimal places floats
	// are rounded to before being compared.
	DefaultDecimalRoundingPrecision = 10
	// DefaultRowDisplayCap is the number of rows rendered per side in a report.
	DefaultRowDisplayCap = 10
	// UnboundedRowDisplay renders every row in a report.
	UnboundedRowDisplay = -1
)

// Policy controls how two result sets are compared.
type Policy struct {
	// StrictMode requires exact equality of every cell. When unset, numeric
	// columns may deviate by up to MaxVariancePercent.
	StrictMode bool
	// MaxVariancePercent is the maximum relative deviation, as a percentage
	// of the original value, allowed in tolerant mode.
	MaxVariancePercent float64
	// DecimalRoundingPrecision is the number of decimal places floats are
	// rounded to before comparison.
	DecimalRoundingPrecision int
	// RowDisplayCap limits the rows shown in rendered reports. It never
	// affects what is compared.
	RowDisplayCap int
	// RequireColumnOrder treats a reordering of the same columns as a schema
	// mismatch.
	RequireColumnOrder bool
	// CellDiagnostics attaches the offending cells to value differences.
	CellDiagnostics bool
}

// DefaultPolicy returns a strict policy.
func DefaultPolicy() Policy {
	return Policy{
		StrictMode:               true,
		DecimalRoundingPrecision: DefaultDecimalRoundingPrecision,
		RowDisplayCap:            DefaultRowDisplayCap,
		RequireColumnOrder:       true,
	}
}

// TolerantPolicy returns the default policy with tolerant numeric
// comparison up to the given percentage.
func TolerantPolicy(maxVariancePercent float64) Policy {
	p := DefaultPolicy()
	p.StrictMode = false
	p.MaxVariancePercent = maxVariancePercent
	return p
}

func (p Policy) Validate() error {
	if p.DecimalRoundingPrecision < 0 {
		return errors.Newf("decimal rounding precision must be >= 0, got %d", p.DecimalRoundingPrecision)
	}
	if math.IsNaN(p.MaxVariancePercent) || p.MaxVariancePercent < 0 {
		return errors.Newf("max variance percent must be >= 0, got %v", p.MaxVariancePercent)
	}
	if p.RowDisplayCap < UnboundedRowDisplay {
		return errors.Newf("row display cap must be >= %d, got %d", UnboundedRowDisplay, p.RowDisplayCap)
	}
	return nil
}
