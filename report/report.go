// Package report renders verdicts for people and for storage.
package report

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/compare"
	"github.com/cockroachdb/rewritecheck/resultset"
)

type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Sample is the part of a result set shown alongside a verdict.
type Sample struct {
	Columns []string
	Rows    []resultset.Row
	// TotalRows is the number of rows in the full result set.
	TotalRows int
}

// Records returns the sample rows keyed by column, in column order.
func (s Sample) Records() []Record {
	ret := make([]Record, len(s.Rows))
	for i, row := range s.Rows {
		ret[i] = Record{Columns: s.Columns, Values: row}
	}
	return ret
}

// Record is a row which marshals as a JSON object whose keys keep the column
// order.
type Record struct {
	Columns []string
	Values  resultset.Row
}

func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.Columns) != len(r.Values) {
		return nil, errors.AssertionFailedf("record has %d columns and %d values", len(r.Columns), len(r.Values))
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Performance is the outcome of timing both queries over several runs.
type Performance struct {
	Runs         int
	OriginalAvg  time.Duration
	OptimizedAvg time.Duration
	// Improvement is (OriginalAvg - OptimizedAvg) / OriginalAvg.
	Improvement float64
	// Error is set when a timed run failed; the averages are then unset.
	Error string
}

func (p Performance) MarshalJSON() ([]byte, error) {
	type performanceJSON struct {
		Runs           int     `json:"runs"`
		OriginalAvgMs  float64 `json:"original_avg_ms"`
		OptimizedAvgMs float64 `json:"optimized_avg_ms"`
		Improvement    float64 `json:"improvement"`
		Error          string  `json:"error,omitempty"`
	}
	return json.Marshal(performanceJSON{
		Runs:           p.Runs,
		OriginalAvgMs:  millis(p.OriginalAvg),
		OptimizedAvgMs: millis(p.OptimizedAvg),
		Improvement:    p.Improvement,
		Error:          p.Error,
	})
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Report bundles a verdict with the rows it was drawn from.
type Report struct {
	Status  Status
	Verdict compare.Verdict

	Original  Sample
	Optimized Sample

	Performance *Performance
}

// Render builds the report for verdict. At most rowCap rows of each side are
// kept, or all of them when rowCap is negative, as with
// compare.UnboundedRowDisplay. The inputs
// are not modified.
func Render(verdict compare.Verdict, original, optimized resultset.ResultSet, rowCap int) Report {
	status := StatusFail
	if verdict.Identical {
		status = StatusPass
	}
	return Report{
		Status:    status,
		Verdict:   verdict,
		Original:  sample(original, rowCap),
		Optimized: sample(optimized, rowCap),
	}
}

func sample(rs resultset.ResultSet, rowCap int) Sample {
	n := rs.NumRows()
	if rowCap >= 0 && rowCap < n {
		n = rowCap
	}
	rows := make([]resultset.Row, n)
	for i := range rows {
		rows[i] = rs.Row(i)
	}
	return Sample{Columns: rs.Columns(), Rows: rows, TotalRows: rs.NumRows()}
}
