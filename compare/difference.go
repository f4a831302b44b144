package compare

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/resultset"
)

// DifferenceKind classifies a difference between two result sets.
type DifferenceKind int

const (
	RowCountMismatch DifferenceKind = iota + 1
	SchemaMismatch
	ValueMismatch
	VarianceExceeded
)

func (k DifferenceKind) String() string {
	switch k {
	case RowCountMismatch:
		return "RowCountMismatch"
	case SchemaMismatch:
		return "SchemaMismatch"
	case ValueMismatch:
		return "ValueMismatch"
	case VarianceExceeded:
		return "VarianceExceeded"
	}
	return fmt.Sprintf("DifferenceKind(%d)", int(k))
}

func (k DifferenceKind) MarshalText() ([]byte, error) {
	switch k {
	case RowCountMismatch, SchemaMismatch, ValueMismatch, VarianceExceeded:
		return []byte(k.String()), nil
	}
	return nil, errors.AssertionFailedf("unknown difference kind %d", int(k))
}

// Difference is a single reason two result sets are not identical.
type Difference struct {
	Kind DifferenceKind `json:"kind"`
	// Column is empty for differences which are not attributed to a column.
	Column string `json:"column,omitempty"`
	Detail string `json:"detail"`
	// Cells is only populated when the policy asks for cell diagnostics.
	Cells []CellDifference `json:"cells,omitempty"`
}

func (d Difference) String() string {
	if d.Column != "" {
		return fmt.Sprintf("[%s] %s: %s", d.Kind, d.Column, d.Detail)
	}
	return fmt.Sprintf("[%s] %s", d.Kind, d.Detail)
}

// CellDifference is a single mismatching cell, indexed by its position in
// the normalized row order.
type CellDifference struct {
	Row       int             `json:"row"`
	Original  resultset.Value `json:"original"`
	Optimized resultset.Value `json:"optimized"`
}
