package resultset

import (
	"github.com/cockroachdb/errors"
)

// Row is a single record, with values ordered the same way as the columns
// of the ResultSet it belongs to.
type Row []Value

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	return append(Row(nil), r...)
}

// ResultSet is the captured output of a single query execution. It is never
// mutated after being created.
type ResultSet struct {
	columns []string
	colIdx  map[string]int
	rows    []Row
}

// New returns a ResultSet over copies of the given columns and rows.
func New(columns []string, rows []Row) (ResultSet, error) {
	rs := ResultSet{
		columns: append([]string(nil), columns...),
		colIdx:  make(map[string]int, len(columns)),
		rows:    make([]Row, len(rows)),
	}
	for i, col := range columns {
		if _, ok := rs.colIdx[col]; ok {
			return ResultSet{}, errors.Newf("duplicate column name %q", col)
		}
		rs.colIdx[col] = i
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return ResultSet{}, errors.Newf(
				"row %d has %d values, expected %d",
				i,
				len(row),
				len(columns),
			)
		}
		rs.rows[i] = row.Clone()
	}
	return rs, nil
}

// MustNew is like New, but panics on error. Intended for tests.
func MustNew(columns []string, rows []Row) ResultSet {
	rs, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return rs
}

// Columns returns a copy of the column names in schema order.
func (rs ResultSet) Columns() []string {
	return append([]string(nil), rs.columns...)
}

func (rs ResultSet) NumColumns() int {
	return len(rs.columns)
}

func (rs ResultSet) NumRows() int {
	return len(rs.rows)
}

// ColumnIndex returns the position of the named column.
func (rs ResultSet) ColumnIndex(name string) (int, bool) {
	idx, ok := rs.colIdx[name]
	return idx, ok
}

// At returns the value at the given row and column position.
func (rs ResultSet) At(row, col int) Value {
	return rs.rows[row][col]
}

// Value returns the value of the named column on the given row.
func (rs ResultSet) Value(row int, column string) (Value, bool) {
	idx, ok := rs.colIdx[column]
	if !ok {
		return Value{}, false
	}
	return rs.rows[row][idx], true
}

// Row returns a copy of the given row.
func (rs ResultSet) Row(i int) Row {
	return rs.rows[i].Clone()
}

// Rows returns a deep copy of all rows.
func (rs ResultSet) Rows() []Row {
	ret := make([]Row, len(rs.rows))
	for i, r := range rs.rows {
		ret[i] = r.Clone()
	}
	return ret
}
